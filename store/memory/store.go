package memory

import (
	"context"
	"sync"

	"github.com/lifeready/ledger/audit"
)

// Store keeps the chain in memory. Useful for tests and the example binary;
// the mutex held across the head read and the append gives the serialized
// write the real stores get from a transaction.
type Store struct {
	mu     sync.RWMutex
	events []audit.AuditEvent
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, build func(prevHash string) (audit.AuditEvent, error)) (audit.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := audit.GenesisHash
	if len(s.events) > 0 {
		prev = s.events[len(s.events)-1].EventHash
	}

	e, err := build(prev)
	if err != nil {
		return audit.AuditEvent{}, err
	}

	s.events = append(s.events, e)
	return e, nil
}

func (s *Store) Events(ctx context.Context, q audit.Query) ([]audit.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.AuditEvent
	for _, e := range s.events {
		if q.CaseID != "" && (e.Event.CaseID == nil || *e.Event.CaseID != q.CaseID) {
			continue
		}
		if q.Action != "" && e.Event.Action != q.Action {
			continue
		}
		out = append(out, e)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Head(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) == 0 {
		return audit.GenesisHash, nil
	}
	return s.events[len(s.events)-1].EventHash, nil
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the write path of the ledger. It generates the event envelope
// (event_id, created_at) and delegates the serialized read-then-write to
// the store so that at most one writer advances the chain at a time.
type Service struct {
	store     Store
	sanitizer Sanitizer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDSource(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.Named("audit")
		}
	}
}

func NewService(store Store, sanitizer Sanitizer, opts ...Option) *Service {
	if sanitizer == nil {
		sanitizer = NoopSanitizer{}
	}
	s := &Service{
		store:     store,
		sanitizer: sanitizer,
		logger:    zap.NewNop(),
		now:       time.Now().UTC,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append validates the input, sanitizes the payload, computes the hash pair
// off the current head and persists the new event. The store guarantees the
// head read and the insert happen atomically.
func (s *Service) Append(ctx context.Context, in AppendInput) (AuditEvent, error) {
	if in.ActorPrincipalID == "" {
		return AuditEvent{}, errors.New("actor_principal_id is required")
	}
	if in.Action == "" {
		return AuditEvent{}, errors.New("action is required")
	}
	if !in.Tier.Valid() {
		return AuditEvent{}, fmt.Errorf("invalid tier %q", in.Tier)
	}

	in.Payload = s.sanitizer.SanitizePayload(in.Payload)

	ev, err := s.store.Append(ctx, func(prevHash string) (AuditEvent, error) {
		e := AuditEvent{
			EventID:   s.newID(),
			CreatedAt: s.now().Format(time.RFC3339Nano),
			PrevHash:  prevHash,
			Event:     in,
		}
		h, err := ComputeEventHash(prevHash, e)
		if err != nil {
			return AuditEvent{}, err
		}
		e.EventHash = h
		return e, nil
	})
	if err != nil {
		return AuditEvent{}, err
	}

	s.logger.Info("audit event appended",
		zap.String("event_id", ev.EventID),
		zap.String("action", ev.Event.Action),
		zap.String("tier", string(ev.Event.Tier)),
		zap.String("event_hash", ev.EventHash))
	return ev, nil
}

// Head returns the current chain head, or GenesisHash when empty.
func (s *Service) Head(ctx context.Context) (string, error) {
	return s.store.Head(ctx)
}

func (s *Service) Events(ctx context.Context, q Query) ([]AuditEvent, error) {
	return s.store.Events(ctx, q)
}

// WriteChain serializes the full ordered chain as line-delimited JSON and
// returns the head observed in that snapshot. The snapshot is one
// consistent read: appends racing with the export only affect later
// snapshots.
func (s *Service) WriteChain(ctx context.Context, w io.Writer) (string, error) {
	events, err := s.store.Events(ctx, Query{})
	if err != nil {
		return "", err
	}

	head := GenesisHash
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			return "", err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return "", err
		}
		head = ev.EventHash
	}
	return head, nil
}

// VerifyStored replays the persisted chain through the same verifier used
// for exported files and returns the head hash.
func (s *Service) VerifyStored(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if _, err := s.WriteChain(ctx, &buf); err != nil {
		return "", err
	}
	return VerifyChain(&buf, "")
}

package audit

import "context"

// Query narrows the events returned by a store. The zero value means the
// full chain in append order.
type Query struct {
	CaseID string
	Action string
	Limit  int
}

// Store is the plug-in point for the authoritative chain storage.
//
// Append hands the implementation a build callback: the store must read the
// current head, invoke build with it, and insert the resulting event, all
// inside one transaction or critical section. That read-then-write boundary
// is what keeps two concurrent appends from computing diverging hashes off
// a stale head; the persistence layer is the source of truth for ordering,
// not an in-memory list.
type Store interface {
	Append(ctx context.Context, build func(prevHash string) (AuditEvent, error)) (AuditEvent, error)

	// Events returns stored events in append order.
	Events(ctx context.Context, q Query) ([]AuditEvent, error)

	// Head returns the event_hash of the last appended event, or
	// GenesisHash when the chain is empty.
	Head(ctx context.Context) (string, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/lifeready/ledger/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	seq                BIGSERIAL PRIMARY KEY,
	event_id           UUID NOT NULL UNIQUE,
	created_at         TEXT NOT NULL,
	actor_principal_id TEXT NOT NULL,
	action             TEXT NOT NULL,
	tier               TEXT NOT NULL,
	case_id            TEXT,
	payload            TEXT,
	prev_hash          TEXT NOT NULL UNIQUE,
	event_hash         TEXT NOT NULL UNIQUE
);
`

// The payload column is TEXT, not JSONB: jsonb normalizes numeric literals,
// escapes and key order, but verification must recompute the hash over the
// exact bytes that were hashed at append time.

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append reads the head and inserts the new event inside one transaction.
// The head row is locked for the duration, and the UNIQUE constraint on
// prev_hash backstops the lock: an append that still managed to compute off
// a stale head fails with audit.ErrConflict instead of forking the chain.
func (s *Store) Append(ctx context.Context, build func(prevHash string) (audit.AuditEvent, error)) (audit.AuditEvent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.AuditEvent{}, err
	}
	defer tx.Rollback()

	prev := audit.GenesisHash
	err = tx.QueryRowContext(ctx, `
		SELECT event_hash FROM audit_events ORDER BY seq DESC LIMIT 1 FOR UPDATE
	`).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return audit.AuditEvent{}, err
	}

	e, err := build(prev)
	if err != nil {
		return audit.AuditEvent{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (
			event_id, created_at, actor_principal_id, action, tier,
			case_id, payload, prev_hash, event_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.EventID, e.CreatedAt, e.Event.ActorPrincipalID, e.Event.Action, string(e.Event.Tier),
		nullString(e.Event.CaseID), payloadText(e), e.PrevHash, e.EventHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return audit.AuditEvent{}, fmt.Errorf("append audit event: %w", audit.ErrConflict)
		}
		return audit.AuditEvent{}, err
	}

	if err := tx.Commit(); err != nil {
		return audit.AuditEvent{}, err
	}
	return e, nil
}

func (s *Store) Events(ctx context.Context, q audit.Query) ([]audit.AuditEvent, error) {
	var args []any
	var b strings.Builder

	b.WriteString(`
		SELECT event_id, created_at, actor_principal_id, action, tier,
		       case_id, payload, prev_hash, event_hash
		FROM audit_events
		WHERE 1=1
	`)
	if q.CaseID != "" {
		args = append(args, q.CaseID)
		fmt.Fprintf(&b, " AND case_id = $%d", len(args))
	}
	if q.Action != "" {
		args = append(args, q.Action)
		fmt.Fprintf(&b, " AND action = $%d", len(args))
	}
	b.WriteString(" ORDER BY seq ASC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.AuditEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Head(ctx context.Context) (string, error) {
	head := audit.GenesisHash
	err := s.db.QueryRowContext(ctx, `
		SELECT event_hash FROM audit_events ORDER BY seq DESC LIMIT 1
	`).Scan(&head)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	return head, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (audit.AuditEvent, error) {
	var ev audit.AuditEvent
	var tier string
	var caseID sql.NullString
	var payload []byte

	err := r.Scan(
		&ev.EventID,
		&ev.CreatedAt,
		&ev.Event.ActorPrincipalID,
		&ev.Event.Action,
		&tier,
		&caseID,
		&payload,
		&ev.PrevHash,
		&ev.EventHash,
	)
	if err != nil {
		return audit.AuditEvent{}, err
	}

	ev.Event.Tier = audit.Tier(tier)
	if caseID.Valid {
		v := caseID.String
		ev.Event.CaseID = &v
	}
	if len(payload) > 0 {
		ev.Event.Payload = payload
	}
	return ev, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func payloadText(e audit.AuditEvent) any {
	if len(e.Event.Payload) == 0 {
		return nil
	}
	return string(e.Event.Payload)
}

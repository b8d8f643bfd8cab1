package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lifeready/ledger/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	seq                INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id           TEXT NOT NULL UNIQUE,
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

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store. The connection pool is capped at
// one: SQLite has a single writer anyway, and a private :memory: database
// exists per connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Append(ctx context.Context, build func(prevHash string) (audit.AuditEvent, error)) (audit.AuditEvent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return audit.AuditEvent{}, err
	}
	defer tx.Rollback()

	prev := audit.GenesisHash
	err = tx.QueryRowContext(ctx, `
		SELECT event_hash FROM audit_events ORDER BY seq DESC LIMIT 1
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.EventID, e.CreatedAt, e.Event.ActorPrincipalID, e.Event.Action, string(e.Event.Tier),
		nullString(e.Event.CaseID), payloadText(e), e.PrevHash, e.EventHash)
	if err != nil {
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
		b.WriteString(" AND case_id = ?")
	}
	if q.Action != "" {
		args = append(args, q.Action)
		b.WriteString(" AND action = ?")
	}
	b.WriteString(" ORDER BY seq ASC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		b.WriteString(" LIMIT ?")
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
	var payload sql.NullString

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
	if payload.Valid {
		ev.Event.Payload = []byte(payload.String)
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

package audit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeready/ledger/audit"
)

func TestCanonicalEventJSONSortsKeysRecursively(t *testing.T) {
	e := audit.AuditEvent{
		EventID:   "e-1",
		CreatedAt: "2026-02-03T12:00:00Z",
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "case.export",
			Tier:             audit.TierGreen,
			Payload:          json.RawMessage(`{"b":2,"a":[1,2]}`),
		},
	}

	got, err := audit.CanonicalEventJSON(e)
	require.NoError(t, err)
	require.Equal(t,
		`{"action":"case.export","actor_principal_id":"u-1","case_id":null,"created_at":"2026-02-03T12:00:00Z","event_id":"e-1","payload":{"a":[1,2],"b":2},"tier":"green"}`,
		string(got))
}

func TestCanonicalEventJSONIsKeyOrderIndependent(t *testing.T) {
	base := audit.AuditEvent{
		EventID:   "e-1",
		CreatedAt: "2026-02-03T12:00:00Z",
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "document.upload",
			Tier:             audit.TierAmber,
			Payload:          json.RawMessage(`{"outer":{"z":1,"a":{"k2":"v2","k1":"v1"}},"list":[{"b":1,"a":2}]}`),
		},
	}
	permuted := base
	permuted.Event.Payload = json.RawMessage(`{"list":[{"a":2,"b":1}],"outer":{"a":{"k1":"v1","k2":"v2"},"z":1}}`)

	got1, err := audit.CanonicalEventJSON(base)
	require.NoError(t, err)
	got2, err := audit.CanonicalEventJSON(permuted)
	require.NoError(t, err)
	require.Equal(t, string(got1), string(got2))
}

func TestCanonicalEventJSONPreservesArrayOrderAndNumbers(t *testing.T) {
	e := audit.AuditEvent{
		EventID:   "e-1",
		CreatedAt: "2026-02-03T12:00:00Z",
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "case.update",
			Tier:             audit.TierGreen,
			Payload:          json.RawMessage(`{"amounts":[3,1,2],"rate":1.50,"big":9007199254740993}`),
		},
	}

	got, err := audit.CanonicalEventJSON(e)
	require.NoError(t, err)
	require.Contains(t, string(got), `"amounts":[3,1,2]`)
	require.Contains(t, string(got), `"rate":1.50`)
	require.Contains(t, string(got), `"big":9007199254740993`)
}

func TestCanonicalEventJSONDoesNotEscapeHTML(t *testing.T) {
	e := audit.AuditEvent{
		EventID:   "e-1",
		CreatedAt: "2026-02-03T12:00:00Z",
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "note.add",
			Tier:             audit.TierGreen,
			Payload:          json.RawMessage(`{"s":"a<b&c>"}`),
		},
	}

	got, err := audit.CanonicalEventJSON(e)
	require.NoError(t, err)
	require.Contains(t, string(got), `"s":"a<b&c>"`)
}

func TestCanonicalEventJSONSerializesCaseID(t *testing.T) {
	caseID := "case-7"
	e := audit.AuditEvent{
		EventID:   "e-1",
		CreatedAt: "2026-02-03T12:00:00Z",
		Event: audit.AppendInput{
			ActorPrincipalID: "u-1",
			Action:           "case.create",
			Tier:             audit.TierGreen,
			CaseID:           &caseID,
			Payload:          json.RawMessage(`{}`),
		},
	}

	got, err := audit.CanonicalEventJSON(e)
	require.NoError(t, err)
	require.Contains(t, string(got), `"case_id":"case-7"`)
}

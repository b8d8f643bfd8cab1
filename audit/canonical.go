package audit

import (
	"bytes"
	"encoding/json"
)

// CanonicalEventJSON produces the deterministic byte form of an event that
// is fed into the hash. Exactly these fields are covered:
//
//	event_id, created_at, actor_principal_id, action, tier, case_id, payload
//
// prev_hash and event_hash are deliberately excluded to avoid
// self-reference. Object keys are sorted lexicographically at every nesting
// level, array order is preserved, and the output carries no incidental
// whitespace, so structurally-equal events always serialize to identical
// bytes regardless of field-insertion order.
func CanonicalEventJSON(e AuditEvent) ([]byte, error) {
	payload, err := decodePayload(e.Event.Payload)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"event_id":           e.EventID,
		"created_at":         e.CreatedAt,
		"actor_principal_id": e.Event.ActorPrincipalID,
		"action":             e.Event.Action,
		"tier":               string(e.Event.Tier),
		"case_id":            e.Event.CaseID,
		"payload":            payload,
	}
	return encodeCanonical(fields)
}

// decodePayload re-parses the free-form payload into the generic
// object/array/scalar shape. json.Number keeps numeric literals verbatim so
// re-encoding cannot change their representation.
func decodePayload(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// encodeCanonical writes compact JSON. encoding/json already emits map keys
// in sorted order at every level, which is exactly the canonical form.
// HTML escaping is disabled: the canonical bytes must match any conforming
// verifier byte for byte.
func encodeCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

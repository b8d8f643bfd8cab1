package audit

import "encoding/json"

// Sanitizer allows the host app to redact secrets from the payload before
// the event is hashed and persisted. Default is no-op.
type Sanitizer interface {
	SanitizePayload(payload json.RawMessage) json.RawMessage
}

type NoopSanitizer struct{}

func (NoopSanitizer) SanitizePayload(payload json.RawMessage) json.RawMessage { return payload }

package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeEventHash returns the lowercase hex SHA-256 digest of the raw
// prev_hash bytes followed by the canonical event bytes. It is pure and
// deterministic; the write path and the verify path must produce
// bit-identical results, which is the chain's entire security property.
func ComputeEventHash(prevHash string, e AuditEvent) (string, error) {
	canonical, err := CanonicalEventJSON(e)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

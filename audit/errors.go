package audit

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by stores when a concurrent append computed its
// hashes off a stale head. The caller may retry the whole append.
var ErrConflict = errors.New("concurrent append conflict")

// ErrorKind classifies a verification failure. Integrity failures
// (chain break, hash mismatch, head mismatch, checksum mismatch) are kept
// distinct from I/O, parse and structural failures so callers can tell
// tampering apart from a broken input.
type ErrorKind string

const (
	KindIO               ErrorKind = "io"
	KindParse            ErrorKind = "parse"
	KindStructural       ErrorKind = "structural"
	KindChainBreak       ErrorKind = "chain_break"
	KindHashMismatch     ErrorKind = "hash_mismatch"
	KindHeadMismatch     ErrorKind = "head_mismatch"
	KindChecksumMismatch ErrorKind = "checksum_mismatch"
)

// VerifyError tells you exactly what failed and where. Line is 1-based and
// set for chain-file failures; Path names the offending artifact where one
// is known.
type VerifyError struct {
	Kind   ErrorKind
	Path   string
	Line   int
	Detail string
	Err    error
}

func (e *VerifyError) Error() string {
	switch e.Kind {
	case KindChainBreak:
		return fmt.Sprintf("chain break at line %d: prev_hash mismatch", e.Line)
	case KindHashMismatch:
		return fmt.Sprintf("hash mismatch at line %d", e.Line)
	case KindHeadMismatch:
		return fmt.Sprintf("head hash mismatch: %s", e.Detail)
	case KindChecksumMismatch:
		return fmt.Sprintf("checksum mismatch for %s", e.Path)
	case KindStructural:
		return fmt.Sprintf("structural validation failed: %s", e.Detail)
	case KindParse:
		if e.Line > 0 {
			return fmt.Sprintf("invalid JSON at line %d", e.Line)
		}
		return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
	case KindIO:
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	}
	return string(e.Kind)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// IsKind reports whether err is a VerifyError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *VerifyError
	return errors.As(err, &ve) && ve.Kind == kind
}

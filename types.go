package ledger

import (
	"io"

	"github.com/lifeready/ledger/audit"
)

type Tier = audit.Tier

const (
	TierGreen Tier = audit.TierGreen
	TierAmber Tier = audit.TierAmber
	TierRed   Tier = audit.TierRed
)

const GenesisHash = audit.GenesisHash

type AuditEvent = audit.AuditEvent
type AppendInput = audit.AppendInput
type Store = audit.Store
type Query = audit.Query
type Sanitizer = audit.Sanitizer
type VerifyError = audit.VerifyError
type ErrorKind = audit.ErrorKind

func ComputeEventHash(prevHash string, e AuditEvent) (string, error) {
	return audit.ComputeEventHash(prevHash, e)
}

func VerifyChain(r io.Reader, expectedHead string) (string, error) {
	return audit.VerifyChain(r, expectedHead)
}

func VerifyChainFile(path string, expectedHead string) (string, error) {
	return audit.VerifyChainFile(path, expectedHead)
}

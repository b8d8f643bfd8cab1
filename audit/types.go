package audit

import (
	"encoding/json"
	"fmt"
)

// GenesisHash is the reserved prev_hash of the first event in a chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Tier is the sensitivity classification of an event. Tiers are ordered:
// green < amber < red.
type Tier string

const (
	TierGreen Tier = "green"
	TierAmber Tier = "amber"
	TierRed   Tier = "red"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierGreen, TierAmber, TierRed:
		return Tier(s), nil
	}
	return "", fmt.Errorf("invalid tier %q", s)
}

func (t Tier) Valid() bool {
	_, err := ParseTier(string(t))
	return err == nil
}

// Rank returns the position of the tier in the green < amber < red ordering.
func (t Tier) Rank() int {
	switch t {
	case TierAmber:
		return 1
	case TierRed:
		return 2
	}
	return 0
}

func (t Tier) AtLeast(min Tier) bool {
	return t.Rank() >= min.Rank()
}

// AppendInput is the semantic content of one audit event, supplied by the
// writing service. The envelope fields (event_id, created_at, prev_hash,
// event_hash) are generated at append time.
type AppendInput struct {
	ActorPrincipalID string          `json:"actor_principal_id"`
	Action           string          `json:"action"`
	Tier             Tier            `json:"tier"`
	CaseID           *string         `json:"case_id"`
	Payload          json.RawMessage `json:"payload"`
}

// AuditEvent is one link in the hash chain. Events are immutable once
// written; each event's PrevHash must equal the preceding event's EventHash,
// and the first event's PrevHash must be GenesisHash.
type AuditEvent struct {
	EventID   string      `json:"event_id"`
	CreatedAt string      `json:"created_at"`
	PrevHash  string      `json:"prev_hash"`
	EventHash string      `json:"event_hash"`
	Event     AppendInput `json:"event"`
}

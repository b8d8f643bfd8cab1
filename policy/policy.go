// Package policy consumes the role, tier and access-level orderings carried
// by verified claims. It does not define a policy language; callers compose
// the require helpers in front of ledger operations.
package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/lifeready/ledger/audit"
)

var ErrForbidden = errors.New("forbidden")

type Role string

const (
	RolePrincipal        Role = "principal"
	RoleProxy            Role = "proxy"
	RoleExecutorNominee  Role = "executor_nominee"
	RoleEmergencyContact Role = "emergency_contact"
)

// AccessLevel is ordered: read_only_packs < read_only_all < limited_write.
type AccessLevel string

const (
	AccessReadOnlyPacks AccessLevel = "read_only_packs"
	AccessReadOnlyAll   AccessLevel = "read_only_all"
	AccessLimitedWrite  AccessLevel = "limited_write"
)

func (l AccessLevel) Rank() int {
	switch l {
	case AccessReadOnlyAll:
		return 1
	case AccessLimitedWrite:
		return 2
	}
	return 0
}

// Scope maps an access level to its implied scope string.
func (l AccessLevel) Scope() string {
	switch l {
	case AccessReadOnlyAll:
		return "read:all"
	case AccessLimitedWrite:
		return "write:limited"
	}
	return "read:packs"
}

// RequestContext is the already-verified identity a collaborator supplies
// with each operation. The ledger never authenticates; it only consumes.
type RequestContext struct {
	PrincipalID  string
	Roles        []Role
	AllowedTiers []audit.Tier
	Scopes       []string
	ExpiresAt    time.Time
}

// RequireRole passes when the context holds any of the allowed roles.
// An empty allowlist means no role restriction.
func RequireRole(ctx RequestContext, allowed ...Role) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, have := range ctx.Roles {
		for _, want := range allowed {
			if have == want {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: role not permitted", ErrForbidden)
}

// RequireMinTier passes when the context's highest allowed tier reaches min
// in the green < amber < red ordering.
func RequireMinTier(ctx RequestContext, min audit.Tier) error {
	for _, t := range ctx.AllowedTiers {
		if t.AtLeast(min) {
			return nil
		}
	}
	return fmt.Errorf("%w: insufficient tier access", ErrForbidden)
}

// RequireTier passes when the context is allowed any of the listed tiers.
func RequireTier(ctx RequestContext, allowed ...audit.Tier) error {
	for _, have := range ctx.AllowedTiers {
		for _, want := range allowed {
			if have == want {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: tier not permitted", ErrForbidden)
}

// RequireScope passes when the context carries the required scope.
// An empty requirement passes.
func RequireScope(ctx RequestContext, required string) error {
	if required == "" {
		return nil
	}
	for _, s := range ctx.Scopes {
		if s == required {
			return nil
		}
	}
	return fmt.Errorf("%w: scope not permitted", ErrForbidden)
}

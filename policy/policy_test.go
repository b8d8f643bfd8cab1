package policy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeready/ledger/audit"
	"github.com/lifeready/ledger/policy"
)

func proxyContext() policy.RequestContext {
	return policy.RequestContext{
		PrincipalID:  "u-proxy",
		Roles:        []policy.Role{policy.RoleProxy},
		AllowedTiers: []audit.Tier{audit.TierGreen, audit.TierAmber},
		Scopes:       []string{"read:all"},
	}
}

func TestRequireRole(t *testing.T) {
	ctx := proxyContext()

	require.NoError(t, policy.RequireRole(ctx, policy.RoleProxy))
	require.NoError(t, policy.RequireRole(ctx, policy.RolePrincipal, policy.RoleProxy))
	require.NoError(t, policy.RequireRole(ctx), "empty allowlist means no restriction")

	err := policy.RequireRole(ctx, policy.RoleExecutorNominee)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestRequireMinTier(t *testing.T) {
	ctx := proxyContext()

	require.NoError(t, policy.RequireMinTier(ctx, audit.TierGreen))
	require.NoError(t, policy.RequireMinTier(ctx, audit.TierAmber))

	err := policy.RequireMinTier(ctx, audit.TierRed)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestRequireTier(t *testing.T) {
	ctx := proxyContext()

	require.NoError(t, policy.RequireTier(ctx, audit.TierAmber))
	require.NoError(t, policy.RequireTier(ctx, audit.TierRed, audit.TierGreen))

	err := policy.RequireTier(ctx, audit.TierRed)
	require.ErrorIs(t, err, policy.ErrForbidden)

	err = policy.RequireTier(ctx)
	require.ErrorIs(t, err, policy.ErrForbidden, "empty tier allowlist permits nothing")
}

func TestRequireScope(t *testing.T) {
	ctx := proxyContext()

	require.NoError(t, policy.RequireScope(ctx, "read:all"))
	require.NoError(t, policy.RequireScope(ctx, ""))

	err := policy.RequireScope(ctx, "write:limited")
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestAccessLevelOrdering(t *testing.T) {
	require.Less(t, policy.AccessReadOnlyPacks.Rank(), policy.AccessReadOnlyAll.Rank())
	require.Less(t, policy.AccessReadOnlyAll.Rank(), policy.AccessLimitedWrite.Rank())
}

func TestAccessLevelScope(t *testing.T) {
	require.Equal(t, "read:packs", policy.AccessReadOnlyPacks.Scope())
	require.Equal(t, "read:all", policy.AccessReadOnlyAll.Scope())
	require.Equal(t, "write:limited", policy.AccessLimitedWrite.Scope())
}

func TestTierOrdering(t *testing.T) {
	require.True(t, audit.TierRed.AtLeast(audit.TierGreen))
	require.True(t, audit.TierAmber.AtLeast(audit.TierAmber))
	require.False(t, audit.TierGreen.AtLeast(audit.TierAmber))
}

func TestForbiddenErrorsUnwrap(t *testing.T) {
	err := policy.RequireRole(policy.RequestContext{}, policy.RolePrincipal)
	require.True(t, errors.Is(err, policy.ErrForbidden))
	require.Contains(t, err.Error(), "forbidden")
}

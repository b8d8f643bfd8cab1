// Package auth turns bearer tokens into verified claims. The ledger core
// never issues tokens; it only consumes identities that an upstream
// identity service has already minted.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifeready/ledger/audit"
	"github.com/lifeready/ledger/policy"
)

// Claims is the principal identity carried by a token: who is acting, in
// which role, over which sensitivity tiers, and with what access level.
type Claims struct {
	Role        policy.Role        `json:"role"`
	Tiers       []audit.Tier       `json:"tiers"`
	AccessLevel policy.AccessLevel `json:"access_level"`
	Scopes      []string           `json:"scopes,omitempty"`
	Email       string             `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Context maps verified claims onto the policy request context. Tokens that
// carry no explicit scopes fall back to the scope implied by their access
// level.
func (c *Claims) Context() policy.RequestContext {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = []string{c.AccessLevel.Scope()}
	}

	ctx := policy.RequestContext{
		PrincipalID:  c.Subject,
		Roles:        []policy.Role{c.Role},
		AllowedTiers: c.Tiers,
		Scopes:       scopes,
	}
	if c.ExpiresAt != nil {
		ctx.ExpiresAt = c.ExpiresAt.Time
	}
	return ctx
}

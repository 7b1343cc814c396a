package service

import (
	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// PermissionGate authorizes a caller against one named capability. It only
// inspects the caller, so a denial never touches the store.
type PermissionGate struct {
	Metrics *Metrics
}

// Require fails closed: a nil caller, an empty capability or a caller
// lacking the capability are all denied.
func (g *PermissionGate) Require(caller *domain.Caller, capability string) error {
	if capability == "" || !caller.Has(capability) {
		if g != nil {
			g.Metrics.denied(capability)
		}
		return ErrPermissionDenied
	}
	return nil
}

// CallerFromClaims builds the caller described by verified access token
// claims.
func CallerFromClaims(c jwtx.Claims) *domain.Caller {
	return &domain.Caller{
		AccountID:    c.Subject,
		Email:        c.Email,
		Groups:       c.Groups,
		Capabilities: c.Scopes,
	}
}

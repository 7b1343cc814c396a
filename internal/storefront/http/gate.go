package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// requireCapability runs the permission gate before next. Anonymous callers
// and callers lacking capability get 403 and next never runs.
func requireCapability(gate *service.PermissionGate, capability string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Require(callerFrom(r), capability); err != nil {
				slogx.FromContext(r.Context()).Info("permission denied",
					"capability", capability,
				)
				shopsdk.ErrForbidden.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerFrom returns the authenticated caller, or nil when anonymous.
func callerFrom(r *http.Request) *domain.Caller {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	return service.CallerFromClaims(claims)
}

package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

var (
	errPasswordRequired = shopsdk.ErrBadRequest.WithMessage("Password is required.")
	errWeakPassword     = shopsdk.ErrBadRequest.WithMessage("Password must be at least 8 characters.")
	errProductRequired  = shopsdk.ErrBadRequest.WithMessage("product_id is required.")
	errInvalidProduct   = shopsdk.ErrBadRequest.WithMessage("product_id is not a valid id.")
	errInvalidCategory  = shopsdk.ErrBadRequest.WithMessage("category is not a valid id.")
	errProductNotFound  = shopsdk.ErrNotFound.WithMessage("Product not found.")
	errRefreshRequired  = shopsdk.ErrBadRequest.WithMessage("Refresh token is required.")
	errInvalidRefresh   = shopsdk.ErrInvalidCredentials.WithMessage("Invalid or expired refresh token.")
)

// writeServiceError maps service errors onto the API error taxonomy.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingEmail):
		shopsdk.ErrEmailRequired.WriteError(w)
	case errors.Is(err, service.ErrMissingCode):
		shopsdk.ErrEmailAndCodeRequired.WriteError(w)
	case errors.Is(err, service.ErrMissingPassword):
		errPasswordRequired.WriteError(w)
	case errors.Is(err, service.ErrWeakPassword):
		errWeakPassword.WriteError(w)
	case errors.Is(err, service.ErrMissingProduct):
		errProductRequired.WriteError(w)
	case errors.Is(err, service.ErrInvalidProduct):
		errInvalidProduct.WriteError(w)
	case errors.Is(err, service.ErrInvalidCategory):
		errInvalidCategory.WriteError(w)

	case errors.Is(err, service.ErrAccountNotFound):
		shopsdk.ErrUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrProductNotFound):
		errProductNotFound.WriteError(w)

	case errors.Is(err, service.ErrInvalidPasscode):
		shopsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		shopsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		errInvalidRefresh.WriteError(w)

	case errors.Is(err, service.ErrPermissionDenied):
		shopsdk.ErrForbidden.WriteError(w)

	case errors.Is(err, service.ErrDeliveryFailed):
		slogx.FromContext(r.Context()).Error("passcode delivery failed", "err", err)
		shopsdk.ErrDeliveryFailed.WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		shopsdk.ErrInternal.WriteError(w)
	}
}

package service

import "errors"

var (
	ErrMissingEmail    = errors.New("missing_email")
	ErrMissingCode     = errors.New("missing_code")
	ErrMissingPassword = errors.New("missing_password")
	ErrWeakPassword    = errors.New("weak_password")
	ErrMissingProduct  = errors.New("missing_product")
	ErrInvalidProduct  = errors.New("invalid_product_id")
	ErrInvalidCategory = errors.New("invalid_category")

	ErrAccountNotFound = errors.New("account_not_found")
	ErrProductNotFound = errors.New("product_not_found")

	// ErrInvalidPasscode covers a missing, expired, mismatched or already
	// used passcode. Callers cannot tell these apart.
	ErrInvalidPasscode    = errors.New("invalid_passcode")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")

	ErrPermissionDenied = errors.New("permission_denied")

	ErrDeliveryFailed = errors.New("delivery_failed")
)

package shopsdk

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// APIError is the {"error": message} body every endpoint returns on failure.
// Handlers write it with WriteError; the client decodes it from responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is matches on status code so callers can test errors.Is(err, ErrForbidden)
// regardless of the exact message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode
}

func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message)
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	return &APIError{StatusCode: e.StatusCode, Message: msg}
}

var (
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "The request is malformed or missing required fields.",
	}

	ErrEmailRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Email is required.",
	}

	ErrEmailAndCodeRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Email and OTP are required.",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Invalid or expired OTP.",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Invalid credentials.",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "You do not have permission to perform this action.",
	}

	ErrUserNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Message:    "User not found.",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Message:    "Not found.",
	}

	ErrDeliveryFailed = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Failed to send OTP.",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error.",
	}
)

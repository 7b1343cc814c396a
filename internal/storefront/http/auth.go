package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

type AuthHandler struct {
	AuthService      *service.AuthService
	UnifyLoginErrors bool
}

// HandleRequestOTP issues a passcode and emails it.
//
//	@Summary		Request a one-time passcode
//	@Description	Creates the account on first use, then emails a 6 digit passcode valid for 5 minutes.
//	@Description	Only the most recently requested passcode can be used to log in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		shopsdk.RequestOTPRequest	true	"Account email"
//	@Success		200		{object}	shopsdk.MessageResponse
//	@Failure		400		{object}	shopsdk.APIError	"Email missing"
//	@Failure		429		{object}	shopsdk.APIError	"Rate limited"
//	@Failure		500		{object}	shopsdk.APIError	"Passcode could not be delivered"
//	@Router			/request-otp/ [post].
func (h *AuthHandler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req shopsdk.RequestOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		shopsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.RequestPasscode(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shopsdk.MessageResponse{Message: "OTP sent successfully."})
}

// HandleLogin exchanges a passcode, or a password once one is set, for
// credentials.
//
//	@Summary		Log in
//	@Description	Send either otp_code or password together with the email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		shopsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	shopsdk.LoginResponse
//	@Failure		400		{object}	shopsdk.APIError	"Fields missing"
//	@Failure		401		{object}	shopsdk.APIError	"Invalid or expired passcode"
//	@Failure		404		{object}	shopsdk.APIError	"Unknown account"
//	@Failure		429		{object}	shopsdk.APIError	"Rate limited"
//	@Failure		500		{object}	shopsdk.APIError
//	@Router			/login/ [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req shopsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		shopsdk.ErrBadRequest.WriteError(w)
		return
	}

	code := strings.TrimSpace(req.OTPCode)
	if strings.TrimSpace(req.Email) == "" || (code == "" && req.Password == "") {
		shopsdk.ErrEmailAndCodeRequired.WriteError(w)
		return
	}

	var (
		pair domain.CredentialPair
		err  error
	)
	if code != "" {
		pair, err = h.AuthService.VerifyPasscode(r.Context(), req.Email, code)
	} else {
		pair, err = h.AuthService.LoginWithPassword(r.Context(), req.Email, req.Password)
	}
	if err != nil {
		if h.UnifyLoginErrors && errors.Is(err, service.ErrAccountNotFound) {
			shopsdk.ErrUnauthorized.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shopsdk.LoginResponse{
		Message: "Login successful.",
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}

// HandleRefresh issues a new credential pair for a refresh token.
//
//	@Summary		Refresh credentials
//	@Description	Capabilities are reloaded, so group changes apply to the new access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		shopsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	shopsdk.LoginResponse
//	@Failure		400		{object}	shopsdk.APIError
//	@Failure		401		{object}	shopsdk.APIError	"Invalid or expired refresh token"
//	@Router			/token/refresh/ [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req shopsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		shopsdk.ErrBadRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		errRefreshRequired.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shopsdk.LoginResponse{
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}

// HandleSetPassword enables password login for the caller.
//
//	@Summary		Set password
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	shopsdk.SetPasswordRequest	true	"New password, at least 8 characters"
//	@Success		204
//	@Failure		400	{object}	shopsdk.APIError
//	@Failure		401	{object}	shopsdk.APIError
//	@Router			/password/ [put].
func (h *AuthHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := httpx.UserIDFromContext(ctx)
	if accountID == "" {
		shopsdk.ErrInvalidCredentials.WriteError(w)
		return
	}

	var req shopsdk.SetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		shopsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.SetPassword(ctx, accountID, req.Password); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			// Token outlived its account.
			slogx.FromContext(ctx).Warn("password set for missing account", "account_id", accountID)
			shopsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

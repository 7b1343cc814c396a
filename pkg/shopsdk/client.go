package shopsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the storefront HTTP API. AccessToken, when set, is sent as
// a bearer token on every request.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	AccessToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of c authenticated with access.
func (c *Client) WithToken(access string) *Client {
	cp := *c
	cp.AccessToken = access
	return &cp
}

func (c *Client) RequestOTP(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/request-otp/", RequestOTPRequest{Email: email}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginWithOTP(ctx context.Context, email, code string) (*LoginResponse, error) {
	return c.login(ctx, LoginRequest{Email: email, OTPCode: code})
}

func (c *Client) LoginWithPassword(ctx context.Context, email, password string) (*LoginResponse, error) {
	return c.login(ctx, LoginRequest{Email: email, Password: password})
}

func (c *Client) login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login/", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refresh string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/token/refresh/", RefreshRequest{Refresh: refresh}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPut, "/password/", SetPasswordRequest{Password: password}, nil, http.StatusNoContent)
}

// ListProducts returns all products, or those in category when non-empty.
func (c *Client) ListProducts(ctx context.Context, category string) ([]Product, error) {
	path := "/products/"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}

	var out []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id)+"/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToWishlist adds productID, returning the entry and whether it was new.
func (c *Client) AddToWishlist(ctx context.Context, productID string) (*WishlistEntry, bool, error) {
	resp, err := c.send(ctx, http.MethodPost, "/add-to-wishlist/", AddToWishlistRequest{ProductID: productID})
	if err != nil {
		return nil, false, err
	}

	created := resp.StatusCode == http.StatusCreated
	expected := http.StatusOK
	if created {
		expected = http.StatusCreated
	}

	var out WishlistEntry
	if err := decodeJSON(resp, &out, expected); err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (c *Client) ListWishlist(ctx context.Context) ([]WishlistEntry, error) {
	var out []WishlistEntry
	if err := c.do(ctx, http.MethodGet, "/wishlist/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// JWKS returns the raw key set so callers can feed it to their own verifier.
func (c *Client) JWKS(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target any, expected int) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if target == nil {
		return checkStatus(resp, expected)
	}
	return decodeJSON(resp, target, expected)
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, target any, expected int) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		return parseError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response, expected int) error {
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		data, _ := io.ReadAll(resp.Body)
		return parseError(resp.StatusCode, data)
	}
	return nil
}

func parseError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

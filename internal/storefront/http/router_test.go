package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/lock"
	"github.com/aussiebroadwan/storefront/internal/storefront/notify"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testIssuer = "storefront-test"

// spyStore counts catalog and wishlist access so tests can prove a denied
// request never reached the data.
type spyStore struct {
	store.Store
	catalogCalls  atomic.Int32
	wishlistCalls atomic.Int32
}

func (s *spyStore) Catalog() store.Catalog {
	s.catalogCalls.Add(1)
	return s.Store.Catalog()
}

func (s *spyStore) Wishlists() store.Wishlists {
	s.wishlistCalls.Add(1)
	return s.Store.Wishlists()
}

type testServer struct {
	t       *testing.T
	router  *Router
	store   *sqlite.Store
	spy     *spyStore
	creds   *service.CredentialIssuer
	auth    *service.AuthService
	mu      sync.Mutex
	lastMsg string
	sendErr error
	reqs    atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    testIssuer,
		NumKeys:   1,
	})
	require.NoError(t, err)

	ts := &testServer{t: t, store: st, spy: &spyStore{Store: st}}

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	directory := &service.AccountDirectory{Store: st, Metrics: metrics}
	ts.creds = &service.CredentialIssuer{Keys: keys, Issuer: testIssuer}
	ts.auth = &service.AuthService{
		Store:     st,
		Directory: directory,
		Generator: service.RandomPasscodes{},
		Dispatcher: notify.DispatcherFunc(func(_ context.Context, _, message string) error {
			ts.mu.Lock()
			defer ts.mu.Unlock()
			ts.lastMsg = message
			return ts.sendErr
		}),
		Credentials: ts.creds,
		Hasher:      cryptox.PasswordHasher{Pepper: "test-pepper"},
		Locker:      lock.NewMemory(),
		Metrics:     metrics,
	}

	r := NewRouter(keys.KeySet, keys.Verifier, "test", st, reg, slogx.Discard())
	r.AuthService = ts.auth
	r.CatalogService = &service.CatalogService{Store: ts.spy}
	r.WishlistService = &service.WishlistService{Store: ts.spy}
	r.Gate = &service.PermissionGate{Metrics: metrics}
	r.ApplyRoutes()
	ts.router = r

	return ts
}

// do sends a request from a fresh client address so per-IP limits do not
// interfere with the assertions.
func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	n := ts.reqs.Add(1)
	req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:4321", n>>16&0xff, n>>8&0xff, n&0xff)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (ts *testServer) lastCode() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	code := codePattern.FindString(ts.lastMsg)
	require.NotEmpty(ts.t, code)
	return code
}

// login runs the passcode flow for email and returns the credentials.
func (ts *testServer) login(email string) shopsdk.LoginResponse {
	ts.t.Helper()

	rec := ts.do(http.MethodPost, "/request-otp/", "", shopsdk.RequestOTPRequest{Email: email})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: email, OTPCode: ts.lastCode()})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp shopsdk.LoginResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) seedProduct(name string) (domain.Category, domain.Product) {
	ts.t.Helper()
	ctx := context.Background()

	cat := domain.Category{ID: uuid.New(), Name: name + " category"}
	require.NoError(ts.t, ts.store.Catalog().CreateCategory(ctx, cat))

	p := domain.Product{
		ID:             uuid.New(),
		Name:           name,
		SellingPrice:   1250,
		MaxRetailPrice: 1500,
		CategoryID:     cat.ID,
		Stock:          &domain.Stock{Quantity: 4, Unit: domain.UnitPieces},
	}
	require.NoError(ts.t, ts.store.Catalog().CreateProduct(ctx, p))
	require.NoError(ts.t, ts.store.Catalog().AddProductImage(ctx, p.ID, domain.Image{ID: uuid.New(), URL: "https://img.example/" + name}))
	return cat, p
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}

func TestRequestOTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/request-otp/", "", shopsdk.RequestOTPRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"OTP sent successfully."}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), ts.lastCode())

	rec = ts.do(http.MethodPost, "/request-otp/", "", shopsdk.RequestOTPRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email is required.", errorMessage(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/request-otp/", strings.NewReader("{not json"))
	bad := httptest.NewRecorder()
	ts.router.ServeHTTP(bad, req)
	require.Equal(t, http.StatusBadRequest, bad.Code)

	ts.sendErr = errors.New("relay down")
	rec = ts.do(http.MethodPost, "/request-otp/", "", shopsdk.RequestOTPRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to send OTP.", errorMessage(t, rec))
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/request-otp/", "", shopsdk.RequestOTPRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := ts.lastCode()

	t.Run("missing fields", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Email and OTP are required.", errorMessage(t, rec))

		rec = ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{OTPCode: code})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "nobody@x.com", OTPCode: code})
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "User not found.", errorMessage(t, rec))
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com", OTPCode: wrong})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid or expired OTP.", errorMessage(t, rec))
	})

	t.Run("success", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com", OTPCode: code})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp shopsdk.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Login successful.", resp.Message)
		require.NotEmpty(t, resp.Access)
		require.NotEmpty(t, resp.Refresh)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("code is single use", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com", OTPCode: code})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginUnifiedErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.router.UnifyLoginErrors = true
	// ApplyRoutes captured the flag; rebuild the mux.
	ts.router.Mux = http.NewServeMux()
	ts.router.ApplyRoutes()

	rec := ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "nobody@x.com", OTPCode: "123456"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid or expired OTP.", errorMessage(t, rec))
}

func TestProtectedRoutesRequireCapability(t *testing.T) {
	ts := newTestServer(t)
	_, apple := ts.seedProduct("apple")

	noCaps, err := ts.creds.Mint(domain.Account{ID: "acct-without-groups", Email: "nocaps@x.com"}, nil, []string{domain.AMRPasscode})
	require.NoError(t, err)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/products/", nil},
		{http.MethodGet, "/products/" + apple.ID.String() + "/", nil},
		{http.MethodGet, "/categories/", nil},
		{http.MethodPost, "/add-to-wishlist/", shopsdk.AddToWishlistRequest{ProductID: apple.ID.String()}},
		{http.MethodGet, "/wishlist/", nil},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := ts.do(rt.method, rt.path, "", rt.body)
			require.Equal(t, http.StatusForbidden, rec.Code, "anonymous")
			require.Equal(t, shopsdk.ErrForbidden.Message, errorMessage(t, rec))

			rec = ts.do(rt.method, rt.path, noCaps.AccessToken, rt.body)
			require.Equal(t, http.StatusForbidden, rec.Code, "no capabilities")

			rec = ts.do(rt.method, rt.path, "not-a-jwt", rt.body)
			require.Equal(t, http.StatusUnauthorized, rec.Code, "bad token")

			rec = ts.do(rt.method, rt.path, noCaps.RefreshToken, rt.body)
			require.Equal(t, http.StatusUnauthorized, rec.Code, "refresh token used as access token")
		})
	}

	require.Zero(t, ts.spy.catalogCalls.Load())
	require.Zero(t, ts.spy.wishlistCalls.Load())
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)
	fruit, apple := ts.seedProduct("apple")
	_, _ = ts.seedProduct("bread")
	creds := ts.login("buyer@x.com")

	rec := ts.do(http.MethodGet, "/categories/", creds.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []shopsdk.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 2)

	rec = ts.do(http.MethodGet, "/products/", creds.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []shopsdk.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)

	rec = ts.do(http.MethodGet, "/products/?category="+fruit.ID.String(), creds.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	require.Equal(t, "apple", products[0].Name)
	require.Equal(t, "12.50", products[0].SellingPrice)

	rec = ts.do(http.MethodGet, "/products/?category=fruit", creds.Access, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/products/"+apple.ID.String()+"/", creds.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail shopsdk.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, &shopsdk.Stock{Quantity: 4, Unit: domain.UnitPieces}, detail.Stock)
	require.Len(t, detail.Images, 1)
	require.NotNil(t, detail.Ratings)

	rec = ts.do(http.MethodGet, "/products/"+uuid.NewString()+"/", creds.Access, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found.", errorMessage(t, rec))
}

func TestWishlistEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, apple := ts.seedProduct("apple")
	creds := ts.login("buyer@x.com")

	rec := ts.do(http.MethodPost, "/add-to-wishlist/", creds.Access, shopsdk.AddToWishlistRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/add-to-wishlist/", creds.Access, shopsdk.AddToWishlistRequest{ProductID: uuid.NewString()})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/add-to-wishlist/", creds.Access, shopsdk.AddToWishlistRequest{ProductID: apple.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry shopsdk.WishlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.Equal(t, apple.ID.String(), entry.Product.ID)

	rec = ts.do(http.MethodPost, "/add-to-wishlist/", creds.Access, shopsdk.AddToWishlistRequest{ProductID: apple.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	var again shopsdk.WishlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	require.Equal(t, entry.ID, again.ID)

	rec = ts.do(http.MethodGet, "/wishlist/", creds.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []shopsdk.WishlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, entry.User, list[0].User)

	other := ts.login("other@x.com")
	rec = ts.do(http.MethodGet, "/wishlist/", other.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestPasswordAndRefresh(t *testing.T) {
	ts := newTestServer(t)
	creds := ts.login("a@x.com")

	rec := ts.do(http.MethodPut, "/password/", "", shopsdk.SetPasswordRequest{Password: "correct horse"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPut, "/password/", creds.Access, shopsdk.SetPasswordRequest{Password: "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/password/", creds.Access, shopsdk.SetPasswordRequest{Password: "correct horse"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com", Password: "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/login/", "", shopsdk.LoginRequest{Email: "a@x.com", Password: "wrong horse"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials.", errorMessage(t, rec))

	rec = ts.do(http.MethodPost, "/token/refresh/", "", shopsdk.RefreshRequest{Refresh: creds.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed shopsdk.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.Access)

	rec = ts.do(http.MethodGet, "/categories/", refreshed.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/token/refresh/", "", shopsdk.RefreshRequest{Refresh: creds.Access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/token/refresh/", "", shopsdk.RefreshRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health shopsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	rec = ts.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Checks["database"])
	require.NotContains(t, health.Checks, "lock")

	rec = ts.do(http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var jwks jwtx.JWKS
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)

	_ = ts.do(http.MethodGet, "/categories/", "", nil)
	rec = ts.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `route="GET /categories/{$}"`)
	require.Contains(t, body, `permission_denials_total{capability="view_category"} 1`)
	require.Contains(t, body, "passcodes_issued_total")

	t.Run("degraded lock", func(t *testing.T) {
		ts := newTestServer(t)
		ts.router.Lock = failingPinger{}
		ts.router.Mux = http.NewServeMux()
		ts.router.ApplyRoutes()

		rec := ts.do(http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var health shopsdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		require.Equal(t, "degraded", health.Status)
		require.Contains(t, health.Checks["lock"], "connection refused")
	})
}

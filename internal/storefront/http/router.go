package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/obsx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/storefront/api/storefront" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger is a dependency whose health is reported by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	registry     *prometheus.Registry

	store           store.Store
	AuthService     *service.AuthService
	CatalogService  *service.CatalogService
	WishlistService *service.WishlistService
	Gate            *service.PermissionGate

	// Lock is reported by /readyz when set (distributed locks only).
	Lock Pinger

	// UnifyLoginErrors answers an unknown account at login with the same 401
	// as a bad passcode.
	UnifyLoginErrors bool
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		registry:     registry,
		logger:       logger,
	}

	// obsx reads the matched pattern off the request the mux saw, so it sits
	// directly around the mux.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obsx.NewHTTPMetrics(registry).Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCatalog()
	r.registerWishlist()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront API
//	@version		0.1.0
//	@description	Passwordless storefront: one-time passcodes by email, JWT credentials and capability gated catalog and wishlist endpoints.
//	@description
//	@description				Tokens are signed with EdDSA or ES256 and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/storefront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// protected authenticates the caller and checks capability before h runs.
func (r *Router) protected(h http.HandlerFunc, capability string) http.Handler {
	return httpx.Chain(h,
		httpx.Authenticate(r.verifier), // anonymous passes through to the gate
		requireCapability(r.Gate, capability),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:      r.AuthService,
		UnifyLoginErrors: r.UnifyLoginErrors,
	}

	// Passcode issuance and login are brute-force targets: strict limit by IP.
	r.Mux.Handle("POST /request-otp/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRequestOTP),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /login/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /token/refresh/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PUT /password/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleSetPassword),
			httpx.Authenticate(r.verifier),
			httpx.RequireAuthenticated(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerCatalog() {
	h := &CatalogHandler{CatalogService: r.CatalogService}

	r.Mux.Handle("GET /products/{$}", r.protected(h.HandleListProducts, domain.CapViewProduct))
	r.Mux.Handle("GET /products/{id}/{$}", r.protected(h.HandleGetProduct, domain.CapViewProduct))
	r.Mux.Handle("GET /categories/{$}", r.protected(h.HandleListCategories, domain.CapViewCategory))
}

func (r *Router) registerWishlist() {
	h := &WishlistHandler{WishlistService: r.WishlistService}

	r.Mux.Handle("POST /add-to-wishlist/{$}", r.protected(h.HandleAdd, domain.CapAddWishlist))
	r.Mux.Handle("GET /wishlist/{$}", r.protected(h.HandleList, domain.CapViewWishlist))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.Lock),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", obsx.Handler(r.registry))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/storefront/http"
	"github.com/aussiebroadwan/storefront/internal/storefront/lock"
	"github.com/aussiebroadwan/storefront/internal/storefront/notify"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/obsx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	serviceName = "storefront"
)

// Application encapsulates the storefront with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	registry   *prometheus.Registry
	metrics    *service.Metrics
	dispatcher notify.Dispatcher
	locker     lock.Locker
	redis      *redis.Client // nil unless REDIS_URL is set

	// Services
	authService         *service.AuthService
	catalogService      *service.CatalogService
	wishlistService     *service.WishlistService
	gate                *service.PermissionGate
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: obsx.NewRegistry(serviceName, BuildVersion),
	}
	app.metrics = service.NewMetrics(app.registry)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initDelivery(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initLocker(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeResources()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("storefront starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down storefront...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("storefront stopped")
	return nil
}

func (app *Application) closeResources() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")

	if app.cfg.CatalogSeedFile != "" {
		n, err := SeedCatalog(context.Background(), db, app.cfg.CatalogSeedFile)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		app.logger.Info("catalog seeded", "path", app.cfg.CatalogSeedFile, "products_inserted", n)
	}

	return nil
}

// initDelivery picks the passcode dispatcher.
func (app *Application) initDelivery() error {
	switch app.cfg.NotifyMode {
	case "smtp":
		if app.cfg.SMTPHost == "" || app.cfg.SMTPFrom == "" {
			return errors.New("NOTIFY_MODE=smtp requires SMTP_HOST and SMTP_FROM")
		}
		app.dispatcher = &notify.SMTPDispatcher{
			Host:        app.cfg.SMTPHost,
			Port:        app.cfg.SMTPPort,
			Username:    app.cfg.SMTPUsername,
			Password:    app.cfg.SMTPPassword,
			From:        app.cfg.SMTPFrom,
			Encryption:  notify.ParseEncryption(app.cfg.SMTPEncryption),
			SendTimeout: app.cfg.SMTPSendTimeout,
		}
		app.logger.Info("passcode delivery via smtp",
			"host", app.cfg.SMTPHost,
			"port", app.cfg.SMTPPort,
			"encryption", app.cfg.SMTPEncryption,
		)

	case "log", "":
		app.dispatcher = notify.LogDispatcher{Logger: app.logger}
		app.logger.Warn("passcode delivery logs codes instead of sending them; do not use in production")

	default:
		return fmt.Errorf("unknown NOTIFY_MODE %q", app.cfg.NotifyMode)
	}
	return nil
}

// initLocker uses redis when REDIS_URL is set so several replicas share
// the per-account lock. A single instance locks in memory.
func (app *Application) initLocker() error {
	if app.cfg.RedisURL == "" {
		app.locker = lock.NewMemory()
		return nil
	}

	opt, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	app.redis = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.redis.Ping(ctx).Err(); err != nil {
		_ = app.redis.Close()
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	app.locker = lock.NewRedis(app.redis, lock.RedisOptions{TTL: app.cfg.LockTTL})
	app.logger.Info("distributed account lock enabled", "addr", opt.Addr, "ttl", app.cfg.LockTTL)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	directory := &service.AccountDirectory{
		Store:   app.db,
		Metrics: app.metrics,
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Directory:  directory,
		Generator:  service.RandomPasscodes{},
		Dispatcher: app.dispatcher,
		Credentials: &service.CredentialIssuer{
			Keys:       app.keyManager,
			Issuer:     app.cfg.Issuer,
			AccessTTL:  app.cfg.AccessTTL,
			RefreshTTL: app.cfg.RefreshTTL,
		},
		Hasher:      cryptox.PasswordHasher{Pepper: pepper},
		Locker:      app.locker,
		AllowReplay: app.cfg.AllowPasscodeReplay,
		Metrics:     app.metrics,
	}
	if app.cfg.AllowPasscodeReplay {
		app.logger.Warn("passcode replay enabled: a passcode stays valid until it expires")
	}

	app.catalogService = &service.CatalogService{Store: app.db}
	app.wishlistService = &service.WishlistService{Store: app.db}
	app.gate = &service.PermissionGate{Metrics: app.metrics}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.PasscodeRetention,
	)
	app.housekeepingService.Metrics = app.metrics

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.AuthService = app.authService
	router.CatalogService = app.catalogService
	router.WishlistService = app.wishlistService
	router.Gate = app.gate
	router.UnifyLoginErrors = app.cfg.UnifyLoginErrors
	if pinger, ok := app.locker.(httpapi.Pinger); ok {
		router.Lock = pinger
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

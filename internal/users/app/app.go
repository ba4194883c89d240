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

	httpapi "github.com/aussiebroadwan/usergate/internal/users/http"
	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/internal/users/store/drivers/redis"
	"github.com/aussiebroadwan/usergate/internal/users/store/drivers/sqlite"
	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the credential service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store      store.Store
	keyManager *jwtx.KeyManager

	accountService      *service.AccountService
	tokenService        *service.TokenService
	mfaService          *service.MFAService
	loginService        *service.LoginService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "usergate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	keyManager, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.store.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("usergate starting",
		"port", app.cfg.Port,
		"store", app.cfg.StoreDriver,
		"default_audience", app.cfg.DefaultAudience,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.store.Close()
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
	app.logger.Info("shutting down usergate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("usergate stopped")
	return nil
}

// initStore opens the configured Credential Store driver and applies
// migrations.
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "redis":
		app.store = redis.NewStore(redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
			Timeout:  app.cfg.RedisTimeout,
			Prefix:   app.cfg.RedisPrefix,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.store.Ping(ctx); err != nil {
			// Not fatal: /readyz reports it until redis comes up.
			app.logger.Warn("redis not reachable at startup", "addr", app.cfg.RedisAddr, "error", err)
		}
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.store = db
	}

	if err := app.store.ApplyMigrations(); err != nil {
		_ = app.store.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.logger.Info("credential store ready", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initServices() {
	app.accountService = &service.AccountService{Store: app.store}
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.store,
		Issuer:     app.cfg.Issuer,
		TTL:        app.cfg.TokenTTL,
	}
	app.mfaService = &service.MFAService{
		Store:      app.store,
		Issuer:     app.cfg.MFAIssuer,
		PendingTTL: app.cfg.PendingTTL,
	}
	app.loginService = &service.LoginService{
		Passwords: app.accountService,
		MFA:       app.mfaService,
		Tokens:    app.tokenService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.store,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.cfg.DefaultAudience,
		BuildVersion,
		app.store,
		app.logger,
	)

	router.AccountService = app.accountService
	router.TokenService = app.tokenService
	router.MFAService = app.mfaService
	router.LoginService = app.loginService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

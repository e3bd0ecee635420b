package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/petadmin/internal/config"
	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/datasource/fixture"
	"github.com/simp-lee/petadmin/internal/datasource/remote"
	"github.com/simp-lee/petadmin/internal/middleware"
	"github.com/simp-lee/petadmin/internal/module/auth"
	"github.com/simp-lee/petadmin/internal/module/member"
	"github.com/simp-lee/petadmin/internal/module/post"
	"github.com/simp-lee/petadmin/internal/module/report"
	"github.com/simp-lee/petadmin/internal/upstream"
)

const (
	defaultRequestTimeout  = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultCORSMaxAge      = 24 * time.Hour
	defaultTokenExpiry     = 2 * time.Hour

	// Login attempts per client: one every five seconds, bursts of five.
	loginRPS   = 0.2
	loginBurst = 5
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine   *gin.Engine
	source   datasource.DataSource
	limiters []*middleware.RateLimiter
	logger   *logger.Logger
	cfg      *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, opens the data source selected by datasource.mode,
// builds the HTTP modules on top of it, and registers middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes the admin API with permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Open the data source once; every module shares it.
	src, err := openDataSource(context.Background(), cfg, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup data source: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := src.Close(); err != nil {
			slog.Error("data source close error", slog.Any("error", err))
		}
	}()
	log.Info("data source ready", slog.String("mode", src.Name()))

	a, err := build(cfg, log, src)
	if err != nil {
		return nil, err
	}

	success = true
	return a, nil
}

// build assembles the engine around an already opened data source.
func build(cfg *config.Config, log *logger.Logger, src datasource.DataSource) (*App, error) {
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	a := &App{engine: engine, source: src, logger: log, cfg: cfg}

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.CORS)),
	)

	var loginGuards []gin.HandlerFunc
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter := middleware.NewRateLimiter(rl.RPS, rl.Burst)
		engine.Use(limiter.Handler())

		login := middleware.NewRateLimiter(loginRPS, loginBurst)
		loginGuards = append(loginGuards, login.Handler())

		a.limiters = append(a.limiters, limiter, login)
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Public: []Module{
			auth.NewModule(auth.NewHandler(src), loginGuards...),
		},
		Admin: []Module{
			member.NewModule(member.NewHandler(src)),
			post.NewModule(post.NewHandler(src)),
			report.NewModule(report.NewHandler(src)),
		},
		Health:            src,
		RequireAuthHeader: cfg.Server.RequireAuthHeader,
	}); err != nil {
		a.stopLimiters()
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return a, nil
}

// openDataSource builds the backend selected by datasource.mode.
func openDataSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (datasource.DataSource, error) {
	ds := cfg.DataSource
	switch ds.Mode {
	case config.ModeRemote:
		client, err := upstream.NewClient(ds.Remote.BaseURL,
			upstream.WithTimeout(config.DurationOr(ds.Remote.Timeout, upstream.DefaultTimeout)),
			upstream.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("upstream client: %w", err)
		}
		return remote.New(client), nil

	case config.ModeFixture:
		db, err := config.OpenFixtureStore(ctx, &cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("open fixture store: %w", err)
		}
		src, err := fixture.New(ctx, db, fixture.Options{
			JWTSecret:     ds.Fixture.JWTSecret,
			TokenTTL:      config.DurationOr(ds.Fixture.TokenExpiry, defaultTokenExpiry),
			RefreshTTL:    config.DurationOr(ds.Fixture.RefreshExpiry, 0),
			Seed:          ds.Fixture.Seed,
			AdminEmail:    ds.Fixture.AdminEmail,
			AdminPassword: ds.Fixture.AdminPassword,
			Logger:        log,
		})
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("invalid datasource.mode %q: must be one of %q, %q", ds.Mode, config.ModeRemote, config.ModeFixture)
}

// resolveCORSConfig overlays configured values on the permissive default.
func resolveCORSConfig(c config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if len(c.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = c.AllowOrigins
	}
	if len(c.AllowMethods) > 0 {
		corsConfig.AllowMethods = c.AllowMethods
	}
	if len(c.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = c.AllowHeaders
	}
	corsConfig.AllowCredentials = c.AllowCredentials
	maxAge := config.DurationOr(c.MaxAge, defaultCORSMaxAge)
	corsConfig.MaxAge = strconv.Itoa(int(maxAge / time.Second))
	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Handler exposes the engine, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

func (a *App) stopLimiters() {
	for _, l := range a.limiters {
		l.Stop()
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It shuts down gracefully within server.shutdown_timeout, then closes the
// data source and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := a.cfg.Server.Addr()
	srv := newHTTPServer(addr, a.engine, config.DurationOr(a.cfg.Server.Timeout, defaultRequestTimeout))

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		timeout := config.DurationOr(a.cfg.Server.ShutdownTimeout, defaultShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.stopLimiters()

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			log.Error("data source close error", slog.Any("error", err))
		} else {
			log.Info("data source closed", slog.String("mode", a.source.Name()))
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

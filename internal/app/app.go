package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"go-community/internal/config"
	"go-community/internal/database"
	"go-community/internal/handler"
	"go-community/internal/metrics"
	"go-community/internal/middleware"
	"go-community/internal/repository"
	"go-community/internal/router"
	"go-community/internal/service"
)

// Backends are the stores every command needs.
type Backends struct {
	DB    *database.DB
	Redis *redis.Client
}

// Connect opens Postgres and Redis. The caller owns Close.
func Connect(ctx context.Context, cfg *config.Config) (*Backends, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("connecting to Redis", "addr", cfg.RedisAddr)
	client, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Backends{DB: db, Redis: client}, nil
}

func (b *Backends) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
}

// UserService is the ticket store backed by these connections.
func (b *Backends) UserService(cfg *config.Config) *service.UserService {
	return service.NewUserService(
		repository.NewLoginTicketRepository(b.DB.Pool),
		repository.NewUserRepository(b.DB.Pool),
		repository.NewUserCache(b.Redis),
		cfg.UserCacheTTL,
	)
}

type App struct {
	server   *http.Server
	backends *Backends
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	backends, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := backends.DB.EnsureSchema(ctx); err != nil {
		backends.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready")

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	userService := backends.UserService(cfg)
	postService := service.NewPostService(
		repository.NewPostRepository(backends.DB.Pool),
		repository.NewUserRepository(backends.DB.Pool),
	)
	dataService := service.NewDataService(backends.Redis)

	interceptor := middleware.NewLoginTicketInterceptor(
		userService,
		middleware.WithTicketCookie(cfg.TicketCookieName),
		middleware.WithMetrics(m),
	)

	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"postgres": backends.DB.Health,
		"redis": func(ctx context.Context) error {
			return backends.Redis.Ping(ctx).Err()
		},
	})

	appRouter := router.New(cfg, router.Deps{
		Interceptor: interceptor,
		Stats:       dataService,
		Metrics:     m,
	}, router.Handlers{
		Home:   handler.NewHomeHandler(postService),
		Data:   handler.NewDataHandler(dataService),
		Auth:   handler.NewAuthHandler(userService, cfg.TicketCookieName),
		Health: healthHandler,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, backends: backends}, nil
}

// Run serves until SIGINT/SIGTERM and then drains in-flight requests.
func (a *App) Run() error {
	defer a.backends.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

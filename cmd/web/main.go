// Package main is the entry point for the trip planner web frontend.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/web/internal/config"
	"github.com/pkordes/trip-planner/web/internal/handler"
	"github.com/pkordes/trip-planner/web/internal/middleware"
	"github.com/pkordes/trip-planner/web/internal/planner"
	"github.com/pkordes/trip-planner/web/internal/repo"
	"github.com/pkordes/trip-planner/web/internal/service"
	"github.com/pkordes/trip-planner/web/internal/view"
)

// shutdownTimeout bounds both draining HTTP requests and waiting for
// in-flight planner calls.
const shutdownTimeout = 15 * time.Second

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cannot load .env file, using environment variables", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Session store ----------------------------------------------------
	sessions, closeSessions, err := openSessions(cfg)
	if err != nil {
		slog.Error("failed to open session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}
	defer closeSessions()
	slog.Info("session store ready", "store", cfg.SessionStore, "ttl", cfg.SessionTTL.String())

	// --- Services ---------------------------------------------------------
	client := planner.NewClient(cfg.BackendURL, planner.Options{
		Timeout:          cfg.PlannerTimeout,
		MaxResponseBytes: cfg.PlannerMaxResponseBytes,
		StrictSchema:     cfg.PlannerStrictSchema,
	})
	onFailure := service.ReportFailure
	if cfg.HangOnFailure {
		onFailure = service.KeepPending
	}
	tripSvc := service.NewTripService(sessions, client, onFailure, logger)
	exportSvc := service.NewExportService(sessions)

	pages, err := view.NewRenderer()
	if err != nil {
		slog.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Session → Logger
	// → Recoverer → CORS → body limit. The session middleware runs before
	// the logger so each request line carries its session ID.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSessionHandler(cfg.IsProduction()))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(tripSvc, exportSvc, pages)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// Planner calls run outside the request, so WriteTimeout only covers rendering.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "backend_url", client.Endpoint(), "environment", cfg.Environment)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	// Let planner calls already in flight store their outcome.
	if err := tripSvc.Wait(ctx); err != nil {
		slog.Warn("planner calls still in flight at shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// openSessions builds the configured session store. The returned func
// releases its resources.
func openSessions(cfg config.Config) (repo.SessionRepo, func(), error) {
	if cfg.SessionStore == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Verify Redis is reachable before accepting traffic.
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}
		return repo.NewRedisSessionRepo(client, cfg.RedisPrefix, cfg.SessionTTL), closeFn, nil
	}

	mem := repo.NewMemorySessionRepo(cfg.SessionTTL)
	if cfg.SessionTTL <= 0 {
		return mem, func() {}, nil
	}
	done := make(chan struct{})
	go runJanitor(mem, janitorInterval(cfg.SessionTTL), done)
	return mem, func() { close(done) }, nil
}

// janitorInterval purges a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}

// runJanitor drops expired in-memory sessions until done is closed.
func runJanitor(mem *repo.MemorySessionRepo, every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := mem.PurgeExpired(); n > 0 {
				slog.Debug("expired sessions purged", "count", n, "remaining", mem.Len())
			}
		case <-done:
			return
		}
	}
}

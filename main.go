package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"todo-tracker/internal/auth"
	"todo-tracker/internal/config"
	"todo-tracker/internal/httpx"
	"todo-tracker/internal/mail"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/report"
	"todo-tracker/internal/schedule"
	"todo-tracker/internal/todo"
	"todo-tracker/internal/tracing"
	"todo-tracker/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLoggerFromEnv()
	slog.SetDefault(logger) // for third-party packages that use slog

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config_error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := tracing.Setup(ctx)
	if err != nil {
		logger.Error("tracing_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, err := todo.OpenSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("store_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	sessions := auth.NewManager(cfg.Auth, cfg.Production())
	mailer := mail.NewMailer(cfg.SMTP, mail.NewSMTPSender(cfg.SMTP), store, logger)
	builder := report.NewBuilder(store)

	if cfg.ScheduledEmails {
		scheduler := schedule.New(builder, mailer, cfg.Location(), logger)
		if err := scheduler.Register(); err != nil {
			logger.Error("scheduler_error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		logger.Info("scheduler_disabled")
	}

	r := newRouter(cfg, logger, sessions, store, mailer, builder)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server_listen", slog.String("addr", srv.Addr), slog.String("base_url", cfg.BaseURL))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server_stopped")
}

// newRouter wires the middleware stack, auth gates, and all routes.
func newRouter(
	cfg config.Config,
	logger *slog.Logger,
	sessions *auth.Manager,
	store *todo.SQLiteStore,
	mailer *mail.Mailer,
	builder *report.Builder,
) *chi.Mux {
	r := chi.NewRouter()

	// RequestID first so downstream can include it (logger, traces).
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Tracing)
	r.Use(middleware.RateLimit(middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"env":     cfg.Env,
			"baseUrl": cfg.BaseURL,
		})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	auth.RegisterRoutes(r, sessions)

	// Everything else under /api requires a session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APISessionGate(middleware.SessionGateConfig{
			Sessions: sessions,
		}))
		todo.RegisterRoutes(r, store, mailer)
		todo.RegisterSettingsRoutes(r, store)
		report.RegisterRoutes(r, builder, mailer)
	})

	web.RegisterRoutes(r, sessions)

	return r
}

func newLoggerFromEnv() *slog.Logger {
	level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/impactfest/internal/auth"
	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/config"
	"github.com/geocoder89/impactfest/internal/db"
	"github.com/geocoder89/impactfest/internal/flows"
	httpx "github.com/geocoder89/impactfest/internal/http"
	"github.com/geocoder89/impactfest/internal/http/handlers"
	"github.com/geocoder89/impactfest/internal/http/middlewares"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/observability"
	"github.com/geocoder89/impactfest/internal/redisclient"
	"github.com/geocoder89/impactfest/internal/repo/memory"
	"github.com/geocoder89/impactfest/internal/repo/postgres"
	"github.com/geocoder89/impactfest/internal/session"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load(nil)
	if err == nil {
		err = cfg.RequireBackend()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Check{}

	// session tokens: redis when configured, else process memory
	var tokens session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rc.Close()

		tokens = session.NewRedisStore(rc.Raw(), cfg.SessionTTL)
		checks["redis"] = rc.Ping
	}

	// contact messages: postgres when configured, else process memory
	var contacts contactRepo = memory.NewContactMessagesRepo()
	if cfg.DBURL != "" {
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}
		contacts = postgres.NewContactMessagesRepo(pool, prom)
		checks["postgres"] = pool.Ping
	}

	secret := cfg.SessionSecret
	if secret == "" {
		if cfg.IsProd() {
			log.Error("SESSION_SECRET is required in production")
			os.Exit(1)
		}
		secret = uuid.NewString()
		log.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	api := backend.New(backend.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, log)

	sets := handlers.NewFlowSets(cfg.SessionTTL, flows.SetDeps{
		API:      api,
		Tokens:   tokens,
		Contacts: contacts,
		Notifier: notifications.NewLogNotifier(log),
		Logger:   log,
		Metrics:  prom,
	})

	limiter := middlewares.NewRateLimiter(60, time.Minute)
	go sweepLimiter(ctx, limiter)

	router := httpx.NewRouter(httpx.RouterDeps{
		Log:          log,
		Prom:         prom,
		Gatherer:     reg,
		Sessions:     auth.NewManager(secret, cfg.SessionTTL),
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.IsProd(),
		FlowSets:     sets,
		Inbox:        contacts,
		Checks:       checks,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimiter:  limiter,
		Debug:        !cfg.IsProd(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "backend", cfg.BackendBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}
	log.Info("shutdown complete")
}

type contactRepo interface {
	flows.ContactStore
	handlers.ContactLister
}

func sweepLimiter(ctx context.Context, rl *middlewares.RateLimiter) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			rl.Sweep(now)
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"crmcore/internal/audit"
	audithandler "crmcore/internal/audit/handler"
	auditpg "crmcore/internal/audit/store/postgres"
	"crmcore/internal/notification"
	notificationhandler "crmcore/internal/notification/handler"
	"crmcore/internal/notification/template"
	"crmcore/internal/platform/config"
	"crmcore/internal/platform/httpserver"
	"crmcore/internal/platform/logger"
	"crmcore/internal/platform/metrics"
	pg "crmcore/internal/platform/postgres"
	platformredis "crmcore/internal/platform/redis"
	"crmcore/internal/platform/token"
	httptransport "crmcore/internal/transport/http"
)

// main wires every component explicitly before the process accepts traffic.
// No store or service registers itself as an import side effect.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pg.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres setup failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	// Audit pipeline.
	auditStore := auditpg.New(db)
	recorder := audit.NewRecorder(auditStore, log, m)
	retention := audit.NewRetentionManager(auditStore, cfg.AuditRetention, cfg.RetentionSweepInterval, log, m)

	// Notification pipeline. Templates are seeded before the server opens so
	// dispatch never races an empty catalog.
	registry := template.NewRegistry(template.NewPostgres(db))
	if err := registry.SeedDefaults(ctx); err != nil {
		log.Error("template seeding failed", "error", err)
		os.Exit(1)
	}

	var cache *notification.UnreadCache
	if redisClient != nil {
		cache = notification.NewUnreadCache(redisClient.Client, cfg.UnreadCacheTTL, log)
	}
	notificationStore := notification.NewPostgres(db)
	dispatcher := notification.NewDispatcher(notificationStore, registry, cache, log, m)
	tracker := notification.NewReadStateTracker(notificationStore, cache, log, m)

	validator := token.NewValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(
		notificationhandler.New(tracker, dispatcher, log),
		audithandler.New(recorder, log),
		validator,
		log,
		m,
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting crmcore", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := retention.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := tracker.RunCleanup(ctx, cfg.CleanupSweepInterval, cfg.NotificationCleanupAge)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barangay_portal_backend/internal/adapters/storage"
	"barangay_portal_backend/internal/announcements"
	"barangay_portal_backend/internal/appointments"
	"barangay_portal_backend/internal/auth"
	"barangay_portal_backend/internal/certificates"
	"barangay_portal_backend/internal/chatbot"
	"barangay_portal_backend/internal/contact"
	"barangay_portal_backend/internal/dashboard"
	"barangay_portal_backend/internal/email"
	"barangay_portal_backend/internal/events"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/internal/http/router"
	"barangay_portal_backend/internal/identity"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/db"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for certificate artifacts and announcement images (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "certificates", cfg.GetMinioBucketCertificates())
	ensureBucket(ctx, log, storageSvc, "announcement-images", cfg.GetMinioBucketAnnouncementImages())
	log.Info(
		"storage service initialized",
		"certificatesBucket", cfg.GetMinioBucketCertificates(),
		"announcementImagesBucket", cfg.GetMinioBucketAnnouncementImages(),
	)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// With Redis configured, notifications go through the outbox and the
	// scheduler binary delivers them; without it, they are emailed inline.
	useOutbox := cfg.IsSchedulerEnabled()
	if !useOutbox {
		log.Warn("REDIS_URL not configured; notifications are delivered inline")
	}
	notificationModule := notification.NewModule(pool, sender, storageSvc, cfg.GetMinioBucketCertificates(), useOutbox, log)
	notificationModule.RegisterHandlers(eventBus)

	identityModule := identity.NewModule(pool, log)
	authModule := auth.NewModule(identityModule.Repository(), cfg, val, log)
	certificatesModule := certificates.NewModule(
		pool,
		identityModule.Service(),
		notificationModule.Dispatcher(),
		storageSvc,
		cfg,
		cfg,
		eventBus,
		val,
		log,
	)
	appointmentsModule := appointments.NewModule(pool, identityModule.Service(), notificationModule.Dispatcher(), eventBus, val, log)
	contactModule := contact.NewModule(pool, notificationModule.Dispatcher(), eventBus, val, log)
	announcementsModule := announcements.NewModule(pool, storageSvc, cfg, val, log)
	chatbotModule := chatbot.NewModule(pool, val, log)
	dashboardModule := dashboard.NewModule(
		certificatesModule.Repository(),
		appointmentsModule.Repository(),
		contactModule.Service(),
		identityModule.Repository(),
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			certificatesModule,
			appointmentsModule,
			contactModule,
			announcementsModule,
			chatbotModule,
			dashboardModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}

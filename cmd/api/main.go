package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"golang.org/x/crypto/bcrypt"

	"certforge/config"
	"certforge/internal/adapters/auth"
	"certforge/internal/adapters/email"
	httpdelivery "certforge/internal/delivery/http"
	"certforge/internal/delivery/http/controllers"
	"certforge/internal/delivery/http/middleware"
	"certforge/internal/dispatch"
	"certforge/internal/repository/postgres"
	"certforge/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title CertForge API
// @version 1.0
// @description Certificate generation and delivery service: events, certificate templates, participants, bulk email dispatch, and public verification.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Environment, "port", cfg.Port)

	db, err := openDB(cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := postgres.RunMigrations(cfg.DBUrl, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	authSvc := services.NewAuthService(userRepo, hasher, jwtCodec, cfg.JWTExpiry)
	eventSvc := services.NewEventService(eventRepo, templateRepo, participantRepo, serviceTimeout)
	templateSvc := services.NewTemplateService(templateRepo, serviceTimeout)
	emailSvc := services.NewEmailService(mailer, renderer, logger)
	certSvc := services.NewCertificateService(eventRepo, templateRepo, participantRepo, emailSvc, serviceTimeout)

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		BatchSize:  cfg.DispatchBatchSize,
		BatchDelay: cfg.DispatchBatchDelay,
	}, certSvc, eventRepo, participantRepo, logger)
	defer dispatcher.Close()

	// HTTP
	authController := controllers.NewAuthController(logger, authSvc)
	eventController := controllers.NewEventController(logger, eventSvc)
	templateController := controllers.NewTemplateController(logger, templateSvc)
	sendController := controllers.NewSendController(logger, certSvc, dispatcher)
	verifyController := controllers.NewVerifyController(logger, certSvc)

	mux := httpdelivery.NewRouter(logger, jwtCodec, authController, eventController, templateController, sendController, verifyController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests time to finish; dispatcher.Close (deferred)
	// then stops any in-flight bulk runs.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// @title Club Site API
// @version 1.0
// @description Content, media, and contact API for the club website and its admin CMS.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubsite/config"
	"clubsite/internal/adapters/auth"
	"clubsite/internal/adapters/email"
	"clubsite/internal/adapters/storage"
	delivery "clubsite/internal/delivery/http"
	"clubsite/internal/delivery/http/controllers"
	"clubsite/internal/delivery/http/middleware"
	"clubsite/internal/domain"
	"clubsite/internal/repository/postgres"
	"clubsite/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(db, logger); err != nil {
			return err
		}
	}

	timeout := cfg.RequestTimeout
	jwt := auth.NewJWT(cfg.JWTSecret)

	eventService := services.NewResourceService(domain.EventSpec, postgres.NewEventRepository(db), timeout)
	postService := services.NewResourceService(domain.PostSpec, postgres.NewPostRepository(db), timeout)
	pageService := services.NewResourceService(domain.PageSpec, postgres.NewPageRepository(db), timeout)
	authService := services.NewAuthService(postgres.NewAdminUserRepository(db), auth.NewBcryptHasher(auth.DefaultCost), jwt, cfg.JWTExpiry, timeout)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	recipient := cfg.ContactRecipient
	if recipient == "" {
		logger.Warn("CONTACT_RECIPIENT not set, contact messages go to the sender address", "address", cfg.MailFromAddress)
		recipient = cfg.MailFromAddress
	}
	contactService := services.NewContactService(mailer, email.NewTemplateRenderer(), recipient, timeout)

	var mediaController *controllers.MediaController
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, s3Config(cfg, cfg.S3Bucket))
		if err != nil {
			return err
		}
		mediaService := services.NewMediaService(postgres.NewMediaRepository(db), store, logger, timeout)
		mediaController = controllers.NewMediaController(logger, mediaService)
	} else {
		logger.Warn("S3_BUCKET not set, media routes are disabled")
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, trusted...)
	go limiter.Run(ctx.Done())

	router := delivery.NewRouter(delivery.RouterDeps{
		Logger:      logger,
		Verifier:    jwt,
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		Events:      controllers.NewEventController(logger, eventService),
		Posts:       controllers.NewPostController(logger, postService),
		Pages:       controllers.NewPageController(logger, pageService),
		Auth:        controllers.NewAuthController(logger, authService),
		Media:       mediaController,
		Contact:     controllers.NewContactController(logger, contactService),
		Health:      controllers.NewHealthController(logger, db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func s3Config(cfg *config.Config, bucket string) storage.S3Config {
	return storage.S3Config{
		Bucket:          bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.MediaPublicBaseURL,
	}
}

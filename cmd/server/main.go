package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsignup/config"
	"eventsignup/internal/adapters/auth"
	"eventsignup/internal/adapters/email"
	delivery "eventsignup/internal/delivery/http"
	"eventsignup/internal/delivery/http/controllers"
	"eventsignup/internal/delivery/http/middleware"
	"eventsignup/internal/delivery/http/web"
	"eventsignup/internal/repository/postgres"
	"eventsignup/internal/services"
)

// @title Terminanmeldung API
// @version 1.0
// @description Event registration service: providers manage events, the public signs up.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.ApplyMigrations(db); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer setup failed", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	hasher := auth.NewBcryptHasher(12)
	authService := services.NewAuthService(userRepo, sessionRepo, hasher, cfg.SessionTTL)
	adminService := services.NewAdminEventService(eventRepo)
	publicService := services.NewPublicEventService(eventRepo, emailService, logger)

	pageRenderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Error("page templates failed to parse", "err", err)
		os.Exit(1)
	}

	secureCookies := cfg.Environment == "production"
	mux := delivery.NewRouter(delivery.RouterDeps{
		Logger:           logger,
		Sessions:         sessionRepo,
		AuthController:   controllers.NewAuthController(logger, authService, pageRenderer, secureCookies),
		EventController:  controllers.NewEventController(logger, adminService, pageRenderer),
		PublicController: controllers.NewPublicController(logger, publicService, pageRenderer),
		AuthLimiter:      middleware.NewRateLimiter(cfg.AuthLimit),
	})

	handler := middleware.LoggingMiddleware(logger,
		middleware.CORS(cfg.AllowedOrigins,
			middleware.NewRateLimiter(cfg.GeneralLimit).Handler(mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

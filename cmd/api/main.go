package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medrecruit/onboard-api/config"
	"github.com/medrecruit/onboard-api/internal/handler"
	adminHandler "github.com/medrecruit/onboard-api/internal/handler/admin"
	applicationHandler "github.com/medrecruit/onboard-api/internal/handler/application"
	authHandler "github.com/medrecruit/onboard-api/internal/handler/auth"
	doctorHandler "github.com/medrecruit/onboard-api/internal/handler/doctor"
	"github.com/medrecruit/onboard-api/internal/handler/health"
	"github.com/medrecruit/onboard-api/internal/handler/metrics"
	patientHandler "github.com/medrecruit/onboard-api/internal/handler/patient"
	"github.com/medrecruit/onboard-api/internal/identity"
	"github.com/medrecruit/onboard-api/internal/middleware"
	"github.com/medrecruit/onboard-api/internal/notification"
	"github.com/medrecruit/onboard-api/internal/repository/postgres"
	"github.com/medrecruit/onboard-api/internal/repository/redisstore"
	"github.com/medrecruit/onboard-api/internal/router"
	adminService "github.com/medrecruit/onboard-api/internal/service/admin"
	applicationService "github.com/medrecruit/onboard-api/internal/service/application"
	authService "github.com/medrecruit/onboard-api/internal/service/auth"
	doctorService "github.com/medrecruit/onboard-api/internal/service/doctor"
	"github.com/medrecruit/onboard-api/pkg/auth"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisstore.NewClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	appRepo := postgres.NewApplicationRepository(base)
	actionRepo := postgres.NewAdminActionRepository(base)
	adminRepo := postgres.NewAdminRepository(base)
	documentRepo := postgres.NewDocumentRepository(base)
	accountStore := postgres.NewIdentityStore(base)
	tokenRepo := redisstore.NewTokenRepository(redisClient)

	// Outbound mail and the identity provider
	sender := notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	gateway := identity.NewLocalProvider(accountStore, notification.NewCredentialNotifier(sender))

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry(),
		RefreshExpiry: cfg.JWT.RefreshExpiry(),
	})

	// Services
	appSvc := applicationService.NewService(appRepo, userRepo, actionRepo, adminRepo, gateway, sender)
	authSvc := authService.NewService(userRepo, tokenRepo, gateway, jwtSvc)
	adminSvc := adminService.NewService(adminRepo, appRepo, actionRepo, userRepo)
	doctorSvc := doctorService.NewService(appRepo, documentRepo)

	// HTTP surface
	cookies := handler.CookieWriter{Domain: cfg.Cookies.Domain, Secure: cfg.Cookies.Secure}
	guard := middleware.NewGuard(jwtSvc, tokenRepo)
	metricsH := metrics.New()

	r := router.NewRouter(
		guard,
		metricsH,
		health.NewHandler(db, redisClient),
		authHandler.NewHandler(authSvc, cookies),
		applicationHandler.NewHandler(appSvc, authSvc, cookies),
		adminHandler.NewHandler(adminSvc, appSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(),
		router.Config{
			Mode:           cfg.Server.Mode,
			RateLimit:      rate.Limit(cfg.RateLimit.RPS),
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

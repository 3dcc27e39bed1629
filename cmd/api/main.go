// @title			Conference Sessions API
// @version		1.0
// @description	Sessions, RSVPs and ticketing for conference events.
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in								header
// @name							Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"conferencesessions/config"
	_ "conferencesessions/docs"
	"conferencesessions/internal/adapters/auth"
	"conferencesessions/internal/adapters/email"
	"conferencesessions/internal/adapters/events"
	"conferencesessions/internal/adapters/idempotency"
	"conferencesessions/internal/adapters/passport"
	"conferencesessions/internal/adapters/pretix"
	"conferencesessions/internal/adapters/qr"
	"conferencesessions/internal/delivery/http/controllers"
	"conferencesessions/internal/delivery/http/middleware"
	"conferencesessions/internal/domain"
	"conferencesessions/internal/repository/postgres"
	"conferencesessions/internal/services"

	deliveryhttp "conferencesessions/internal/delivery/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}
	logger.Info("database connection established")
	if cfg.AutoMigrate {
		if err := postgres.Migrate(db, logger); err != nil {
			return err
		}
	}

	eventRepo := postgres.NewEventRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	proofRequestRepo := postgres.NewProofRequestRepository(db)

	jwt := auth.NewJWT(cfg.JWTSecret, cfg.TokenExpiry)
	hasher := auth.NewBcryptHasher(12)

	ticketing := pretix.NewClient(pretix.Config{
		BaseURL:   cfg.Pretix.BaseURL,
		Organizer: cfg.Pretix.Organizer,
		Token:     cfg.Pretix.Token,
	}, nil)

	var idem domain.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb)
	} else {
		logger.Info("REDIS_ADDR not set; idempotency keys are ignored")
	}

	var publisher domain.SessionEventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer kp.Close()
		publisher = kp
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	passportCfg := cfg.Passport
	passportService := services.NewPassportService(
		userRepo, roleRepo, proofRequestRepo,
		passport.NewDecoder(),
		passport.NewProofVerifier(passportCfg.VerifyURL, nil),
		passport.NewParticipantFetcher(passportCfg.ServerURL, nil),
		jwt, logger,
		services.PassportConfig{
			AllowedOrigins: passportCfg.AllowedOrigins,
			RequestTTL:     passportCfg.RequestTTL,
			TokenExpiry:    cfg.TokenExpiry,
			BuildURLs: func(state string) (string, string, error) {
				return passport.ProofURLs(passportCfg.URL, passportCfg.ReturnURL, state)
			},
		},
	)

	timeout := cfg.RequestTimeout
	creator := services.NewSessionCreationService(eventRepo, sessionRepo, ticketing, idem, publisher, logger, services.SessionCreationConfig{
		Compensation:   domain.ParseCompensationPolicy(cfg.SessionCompensation),
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
	})
	sessionService := services.NewSessionService(eventRepo, sessionRepo, rsvpRepo, favoriteRepo, timeout)
	rsvpService := services.NewRSVPService(rsvpRepo, sessionRepo, userRepo, emailService, qr.NewCheckInEncoder(cfg.QRSecret), logger, timeout)
	favoriteService := services.NewFavoriteService(favoriteRepo, timeout)
	eventService := services.NewEventService(eventRepo, timeout)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, jwt, cfg.TokenExpiry)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Sessions:  controllers.NewSessionController(logger, creator, sessionService),
		RSVPs:     controllers.NewRSVPController(logger, rsvpService),
		Favorites: controllers.NewFavoriteController(logger, favoriteService),
		Events:    controllers.NewEventController(logger, eventService),
		Ticketing: controllers.NewTicketingController(logger, ticketing),
		Auth:      controllers.NewAuthController(logger, authService, passportService),
	}, jwt, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server shut down")
	return nil
}

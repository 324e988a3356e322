package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"recipeapp/internal/config"
	"recipeapp/internal/database"
	"recipeapp/internal/logging"
	"recipeapp/internal/media"
	"recipeapp/internal/repositories"
	"recipeapp/internal/server"
	"recipeapp/internal/services"
	"recipeapp/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) > 1 && os.Args[1] == "createsuperuser" {
		if err := createSuperuser(cfg, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("createsuperuser failed")
		}
		return
	}

	if err := serve(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

func createSuperuser(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	email := fs.String("email", "", "superuser email")
	password := fs.String("password", "", "superuser password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	user, err := auth.CreateSuperuser(context.Background(), *email, *password)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid superuser: %v", verr.Fields)
		}
		return err
	}
	log.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("superuser created")
	return nil
}

func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, error) {
	if cfg.MediaBackend == "s3" {
		return media.NewS3Store(ctx, media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return media.NewOSStore(cfg.MediaRoot)
}

func serve(cfg *config.Config) error {
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.Warn().Err(err).Msg("sentry disabled")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := newMediaStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}

	deps := server.Deps{DB: db, Store: store}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Error().Err(err).Msg("rabbitmq unavailable, recipe events disabled")
		} else {
			defer mqClient.Close()
			deps.Events = mqClient

			if err := mqClient.ConsumeRecipeEvents(rabbitmq.HandleRecipeMessage); err != nil {
				log.Error().Err(err).Msg("failed to start recipe event consumer")
			}
		}
	}

	app := server.NewApp(cfg, deps)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

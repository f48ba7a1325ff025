package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := config.New()
	setupLogger(c)

	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		overlay, err := loadSSM(ctx, c, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading SSM parameters")
		}
		c = config.Merge(c, overlay)
		log.Info().Int("count", len(overlay)).Msg("Loaded SSM parameters")
	}

	log.Info().Str("dbType", config.GetString(c, "DB_TYPE", "postgres")).Msg("Initializing app...")

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)
	defer func() {
		if err := currentDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		if _, err := models.GenerateColumnReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	store, err := storage.New(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage")
	}
	log.Info().Str("storageType", store.Type()).Msg("Upload storage ready")

	opts := []api.Option{
		api.WithStorage(store),
		api.WithMailer(services.NewMailer(c)),
	}
	if redisURL := config.GetString(c, "REDIS_URL", ""); redisURL != "" {
		client, err := api.NewRedisClient(ctx, redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to redis")
		}
		defer client.Close()
		opts = append(opts, api.WithRedis(client))
		log.Info().Msg("Rate limits stored in redis")
	}

	server, err := api.NewServer(c, currentDB, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	shutdownTimeout := time.Duration(config.GetInt(c, "SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		errChannel := make(chan error, 1)
		go server.Start(errChannel)

		select {
		case err := <-errChannel:
			return fmt.Errorf("server stopped: %w", err)
		case <-gctx.Done():
			log.Info().Msg("Shutdown signal received")
			server.ShutdownGracefully(shutdownTimeout)
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Closing server")
	}
}

// setupLogger configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogger(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if config.GetString(c, "LOG_FORMAT", "json") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func loadSSM(ctx context.Context, c map[string]string, path string) (map[string]string, error) {
	client, err := config.NewSSMClient(ctx, config.GetString(c, "AWS_REGION", ""))
	if err != nil {
		return nil, err
	}
	return config.LoadSSM(ctx, client, path)
}

// hashPassword prints the bcrypt hash for ADMIN_PASSWORD_HASH. The password is read
// from the first argument or, when absent, from the first line of stdin.
func hashPassword(args []string) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

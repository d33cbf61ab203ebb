package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisstorage "github.com/gofiber/storage/redis/v3"

	"sealshare/internal/blob"
	"sealshare/internal/config"
	"sealshare/internal/db"
	"sealshare/internal/email"
	"sealshare/internal/jobs"
	"sealshare/internal/metrics"
	"sealshare/internal/ratelimit"
	"sealshare/internal/server"
	"sealshare/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	policy, err := config.LoadPolicyConfig()
	if err != nil {
		log.Fatalf("Failed to load policy file: %v", err)
	}
	cfg.Apply(policy)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Redis backs both the global request limiter and the durable
	// per-operation attempt budgets.
	redisStore := redisstorage.New(redisstorage.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	defer redisStore.Close()
	limiter := ratelimit.New(ratelimit.NewRedisCounter(redisStore.Conn()))

	// Object store for file ciphertext
	blobs, err := blob.NewStore(ctx, blob.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}

	metrics.Init()

	svc := service.New(database, blobs, limiter, cfg, logger).
		WithNotifier(email.NewNotifier(cfg))

	srv := server.New(cfg, redisStore)
	srv.RegisterRoutes(database, svc, logger)

	// Background purge of expired and tombstoned shares
	reaper := jobs.NewReaper(database, blobs,
		time.Duration(cfg.ReaperIntervalMinutes)*time.Minute,
		24*time.Hour, logger)
	go reaper.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/storeline/storeline-golang/internal/checkout"
	"github.com/storeline/storeline-golang/internal/config"
	"github.com/storeline/storeline-golang/internal/database"
	"github.com/storeline/storeline-golang/internal/handlers"
	"github.com/storeline/storeline-golang/internal/logging"
	"github.com/storeline/storeline-golang/internal/metrics"
	"github.com/storeline/storeline-golang/internal/notifier"
	"github.com/storeline/storeline-golang/internal/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the checkout rate limiter is disabled,
	// but correctness never depends on it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, checkout rate limiting disabled", "addr", cfg.RedisAddr, "error", err.Error())
			rdb = nil
		}
	}

	mailer, err := notifier.NewSES(context.Background(), cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email notifier: %v", err)
	}

	m := metrics.New("api")

	coordinator := checkout.NewCoordinator(db, mailer, logger)
	coordinator.Timeout = cfg.CheckoutTimeout
	coordinator.Metrics = m

	orderQueries := &checkout.Queries{DB: db}

	app := handlers.New(db, coordinator, orderQueries, mailer, logger, []byte(cfg.JWTSecret))

	// Background sweeper: orders stuck in 'pending' past the configured age
	// get cancelled so they stop cluttering open-order views.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		logger.Info("stale order sweeper started", "max_age", cfg.StaleOrderAge.String())

		for range ticker.C {
			n, err := checkout.CancelStale(context.Background(), db, cfg.StaleOrderAge)
			if err != nil {
				logger.Error("stale order sweep failed", "error", err.Error())
				continue
			}
			if n > 0 {
				logger.Info("cancelled stale pending orders", "count", n)
			}
		}
	}()

	router := routes.SetupRouter(app, cfg, rdb, m)

	logger.Info("starting storeline API server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

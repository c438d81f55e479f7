package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/adapter/handler"
	"github.com/nkollections/notifier/internal/adapter/mail"
	"github.com/nkollections/notifier/internal/adapter/storage"
	"github.com/nkollections/notifier/internal/config"
	"github.com/nkollections/notifier/internal/core/service"
	"github.com/nkollections/notifier/internal/port"
)

const scanRunTimeout = 5 * time.Minute

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	if err := storage.InitSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	log.Info().Msg("connected to mysql")

	// Redis is optional; without it the scan guard runs lock-free.
	var locker port.ScanLocker
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		locker = storage.NewRedisAdapter(rdb)
		log.Info().Msg("connected to redis, scan guard enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, overlapping scans may duplicate alerts")
	}

	if cfg.ResendAPIKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, notifications degrade to in-app only")
	}

	// Wiring
	store := storage.NewMySQLAdapter(db)
	mailer := mail.NewResendAdapter(cfg.ResendAPIKey, cfg.MailFrom)
	notifier := service.NewNotificationService(store, mailer, cfg.SiteBaseURL, log)
	scanner := service.NewScanner(store, notifier, cfg.LowStockThreshold, cfg.LowStockLimit, cfg.ScanWorkers, log)
	guard := service.NewScanGuard(scanner, locker, log)
	limiter := service.NewRateLimiter(store, cfg.TryOnDailyCap, log)

	// Internal schedule; an external scheduler may hit the HTTP
	// trigger instead or in addition, the guard serializes them.
	scheduler := cron.New()
	if cfg.ScanSchedule != "" {
		_, err := scheduler.AddFunc(cfg.ScanSchedule, func() {
			runCtx, runCancel := context.WithTimeout(context.Background(), scanRunTimeout)
			defer runCancel()

			result, err := guard.Run(runCtx)
			switch {
			case errors.Is(err, service.ErrScanInProgress):
				log.Info().Msg("scheduled scan skipped, another run holds the lock")
			case err != nil:
				log.Error().Err(err).Msg("scheduled scan failed")
			default:
				log.Info().
					Int("notified", result.Notified).
					Int("failed", result.Failed).
					Msg("scheduled scan finished")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ScanSchedule).Msg("invalid scan schedule")
		}
		scheduler.Start()
		log.Info().Str("schedule", cfg.ScanSchedule).Msg("scan schedule started")
	}

	// HTTP server
	mux := http.NewServeMux()
	httpHandler := handler.NewHTTPHandler(guard, limiter, store, cfg.ScanSecret, log)
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("http server stopped")

	// Let an in-flight scheduled scan finish before closing the store.
	<-scheduler.Stop().Done()
	log.Info().Msg("scheduler stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Info().Msg("connections closed")
}

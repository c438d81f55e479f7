// Command scan runs a single low-stock scan and exits. Meant for
// operator cron entries and one-off manual runs.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/adapter/mail"
	"github.com/nkollections/notifier/internal/adapter/storage"
	"github.com/nkollections/notifier/internal/config"
	"github.com/nkollections/notifier/internal/core/service"
	"github.com/nkollections/notifier/internal/port"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall scan deadline")
	flag.Parse()

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open mysql")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}

	var locker port.ScanLocker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		locker = storage.NewRedisAdapter(rdb)
	}

	store := storage.NewMySQLAdapter(db)
	mailer := mail.NewResendAdapter(cfg.ResendAPIKey, cfg.MailFrom)
	notifier := service.NewNotificationService(store, mailer, cfg.SiteBaseURL, log)
	scanner := service.NewScanner(store, notifier, cfg.LowStockThreshold, cfg.LowStockLimit, cfg.ScanWorkers, log)
	guard := service.NewScanGuard(scanner, locker, log)

	result, err := guard.Run(ctx)
	if errors.Is(err, service.ErrScanInProgress) {
		fmt.Println("skipped: a scan is already running")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		os.Exit(1)
	}

	fmt.Printf("candidates=%d recipients=%d notified=%d failed=%d\n",
		result.Candidates, result.Recipients, result.Notified, result.Failed)
}

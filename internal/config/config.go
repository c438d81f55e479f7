// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-derived knob, built once at process
// start and passed down explicitly. No component reads the environment
// on its own.
type Config struct {
	HTTPAddr string

	MySQLDSN string

	// RedisAddr enables the advisory scan lock; empty disables it and
	// overlapping triggers may double-notify.
	RedisAddr string

	// ResendAPIKey may be empty, in which case notifications degrade
	// to in-app only.
	ResendAPIKey string
	MailFrom     string
	SiteBaseURL  string

	// ScanSecret authorizes the HTTP scan trigger; empty disables it.
	ScanSecret string
	// ScanSchedule is a cron expression; empty disables the internal
	// schedule (an external scheduler can still hit the HTTP trigger).
	ScanSchedule string

	LowStockThreshold int
	LowStockLimit     int
	ScanWorkers       int
	TryOnDailyCap     int

	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:          getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		ResendAPIKey:      getenv("RESEND_API_KEY", ""),
		MailFrom:          getenv("MAIL_FROM", "Store Operations <onboarding@resend.dev>"),
		SiteBaseURL:       getenv("SITE_BASE_URL", "http://localhost:3000"),
		ScanSecret:        getenv("SCAN_SECRET", ""),
		ScanSchedule:      getenv("SCAN_SCHEDULE", "0 9 * * *"),
		LowStockThreshold: atoienv("LOW_STOCK_THRESHOLD", 5),
		LowStockLimit:     atoienv("LOW_STOCK_LIMIT", 100),
		ScanWorkers:       atoienv("SCAN_WORKERS", 4),
		TryOnDailyCap:     atoienv("TRY_ON_DAILY_CAP", 5),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 15),
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/port"
)

const (
	scanLockName = "low-stock-scan"
	scanLockTTL  = 10 * time.Minute
)

var ErrScanInProgress = errors.New("a low-stock scan is already running")

// ScanGuard serializes overlapping scan triggers (a slow previous run
// plus a fresh cron tick) behind an advisory lock. It sits outside the
// Scanner so the Scanner stays lock-free and independently testable.
// With a nil locker, overlapping triggers may send duplicate alerts;
// that mode matches the original behavior and is accepted.
type ScanGuard struct {
	scanner *Scanner
	locker  port.ScanLocker
	log     zerolog.Logger
}

func NewScanGuard(scanner *Scanner, locker port.ScanLocker, log zerolog.Logger) *ScanGuard {
	return &ScanGuard{
		scanner: scanner,
		locker:  locker,
		log:     log.With().Str("component", "scan-guard").Logger(),
	}
}

// Run executes one guarded scan. ErrScanInProgress is returned when
// another trigger holds the lock. Lock infrastructure failures do not
// stop alerting: the scan runs unguarded, same availability-first
// policy as the rate limiter.
func (g *ScanGuard) Run(ctx context.Context) (ScanResult, error) {
	if g.locker == nil {
		return g.scanner.Run(ctx)
	}

	ok, err := g.locker.AcquireScanLock(ctx, scanLockName, scanLockTTL)
	if err != nil {
		g.log.Warn().Err(err).Msg("scan lock unavailable, running unguarded")
		return g.scanner.Run(ctx)
	}
	if !ok {
		return ScanResult{}, ErrScanInProgress
	}
	defer func() {
		// Release with a fresh deadline so a cancelled trigger still
		// frees the lock; the TTL remains the backstop.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := g.locker.ReleaseScanLock(releaseCtx, scanLockName); err != nil {
			g.log.Warn().Err(err).Msg("scan lock release failed, waiting for ttl expiry")
		}
	}()

	return g.scanner.Run(ctx)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/core/domain"
	"github.com/nkollections/notifier/internal/port"
)

const (
	DefaultLowStockThreshold = 5
	DefaultLowStockLimit     = 100

	// Operator route embedded in every low-stock alert.
	lowStockLink = "/admin/products"

	// Upper bound for one recipient's write-then-send sequence.
	notifyTimeout = 15 * time.Second
)

// ScanResult summarizes one scan. Per-recipient failures land in
// Failed; the scan itself still counts as a success.
type ScanResult struct {
	Candidates int
	Recipients int
	Notified   int
	Failed     int
}

// Scanner re-evaluates current inventory on every run and re-notifies
// conditions that are still true. It holds no state between runs and
// takes no locks; overlap protection lives in ScanGuard.
type Scanner struct {
	store     port.StoreRepository
	notifier  *NotificationService
	threshold int
	limit     int
	workers   int
	log       zerolog.Logger
}

func NewScanner(store port.StoreRepository, notifier *NotificationService, threshold, limit, workers int, log zerolog.Logger) *Scanner {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if limit <= 0 {
		limit = DefaultLowStockLimit
	}
	if workers <= 0 {
		workers = 1
	}

	return &Scanner{
		store:     store,
		notifier:  notifier,
		threshold: threshold,
		limit:     limit,
		workers:   workers,
		log:       log.With().Str("component", "low-stock-scanner").Logger(),
	}
}

// Run queries low-stock inventory, resolves the eligible operators and
// fans one aggregated warning out to all of them. Empty inventory or
// an empty recipient set is a successful no-op. An error is returned
// only when one of the two upstream reads fails entirely.
func (s *Scanner) Run(ctx context.Context) (ScanResult, error) {
	var res ScanResult

	products, err := s.store.LowStockProducts(ctx, s.threshold, s.limit)
	if err != nil {
		return res, fmt.Errorf("query low stock: %w", err)
	}
	res.Candidates = len(products)
	if len(products) == 0 {
		s.log.Debug().Msg("no low-stock products")
		return res, nil
	}

	operators, err := s.store.ActiveOperators(ctx)
	if err != nil {
		return res, fmt.Errorf("query operators: %w", err)
	}
	res.Recipients = len(operators)
	if len(operators) == 0 {
		s.log.Info().Int("candidates", res.Candidates).Msg("low stock found but no active operators")
		return res, nil
	}

	title, message := buildAlert(products)

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.workers)
		notified atomic.Int32
		failed   atomic.Int32
	)
	for _, op := range operators {
		// Cancellation mid-fan-out: recipients already dispatched keep
		// their effects, the rest are skipped.
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(op domain.Operator) {
			defer wg.Done()
			defer func() { <-sem }()

			notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()

			_, err := s.notifier.Notify(notifyCtx, NotifyParams{
				RecipientID: op.ID,
				Severity:    domain.SeverityWarning,
				Title:       title,
				Message:     message,
				Link:        lowStockLink,
				EmailTo:     op.Email,
			})
			if err != nil {
				failed.Add(1)
				s.log.Error().Err(err).Str("operator_id", op.ID).Msg("failed to notify operator")
				return
			}
			notified.Add(1)
		}(op)
	}
	wg.Wait()

	res.Notified = int(notified.Load())
	res.Failed = int(failed.Load())
	s.log.Info().
		Int("candidates", res.Candidates).
		Int("recipients", res.Recipients).
		Int("notified", res.Notified).
		Int("failed", res.Failed).
		Msg("low-stock scan complete")

	return res, nil
}

func buildAlert(products []domain.Product) (title, message string) {
	plural := ""
	if len(products) > 1 {
		plural = "s"
	}
	title = fmt.Sprintf("Low Stock Alert: %d Product%s", len(products), plural)

	parts := make([]string, 0, len(products))
	for _, p := range products {
		parts = append(parts, fmt.Sprintf("%s (%d left)", p.Name, p.Stock))
	}
	message = "The following products are running low: " + strings.Join(parts, ", ")

	return title, message
}

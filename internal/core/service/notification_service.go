package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/core/domain"
	"github.com/nkollections/notifier/internal/port"
)

var ErrMissingContent = errors.New("notification title and message are required")

type NotificationService struct {
	store   port.StoreRepository
	mailer  port.Mailer
	baseURL string
	log     zerolog.Logger
}

func NewNotificationService(store port.StoreRepository, mailer port.Mailer, baseURL string, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store:   store,
		mailer:  mailer,
		baseURL: baseURL,
		log:     log.With().Str("component", "notification").Logger(),
	}
}

type NotifyParams struct {
	RecipientID string // empty means a system-wide broadcast
	Severity    domain.Severity
	Title       string
	Message     string
	Link        string
	Metadata    map[string]any
	EmailTo     string // empty skips the email side channel
}

// Notify persists one notification row and, when EmailTo is set,
// attempts a best-effort email. The durable row is the success
// criterion: an email failure is logged and never rolls the row back,
// and only an insert failure produces an error.
func (s *NotificationService) Notify(ctx context.Context, p NotifyParams) (*domain.Notification, error) {
	if p.Title == "" || p.Message == "" {
		return nil, ErrMissingContent
	}

	severity := p.Severity
	if severity == "" {
		severity = domain.SeverityInfo
	}

	n := domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: p.RecipientID,
		Severity:    severity,
		Title:       p.Title,
		Message:     p.Message,
		Link:        p.Link,
		Metadata:    p.Metadata,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	if p.EmailTo != "" {
		html := renderEmail(n, s.baseURL)
		if _, err := s.mailer.Send(ctx, p.EmailTo, n.Title, html); err != nil {
			s.log.Warn().
				Err(err).
				Str("notification_id", n.ID).
				Str("to", p.EmailTo).
				Msg("email delivery failed, in-app notification stands")
		}
	}

	return &n, nil
}

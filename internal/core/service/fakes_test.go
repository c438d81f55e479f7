package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nkollections/notifier/internal/core/domain"
)

// Mock StoreRepository
type mockStore struct {
	mu sync.Mutex

	products  []domain.Product
	operators []domain.Operator
	inserted  []domain.Notification
	usage     []domain.UsageEvent

	lowStockErr  error
	operatorsErr error
	countErr     error
	insertErr    func(n domain.Notification) error
}

func (m *mockStore) LowStockProducts(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	if m.lowStockErr != nil {
		return nil, m.lowStockErr
	}

	var out []domain.Product
	for _, p := range m.products {
		if !p.IsLowStock(threshold) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) ActiveOperators(ctx context.Context) ([]domain.Operator, error) {
	if m.operatorsErr != nil {
		return nil, m.operatorsErr
	}

	var out []domain.Operator
	for _, op := range m.operators {
		if op.Role == domain.RoleAdmin && op.Active {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *mockStore) InsertNotification(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		if err := m.insertErr(n); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, n)
	return nil
}

func (m *mockStore) CountUsageSince(ctx context.Context, guestID string, since time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}

	count := 0
	for _, e := range m.usage {
		if e.GuestID == guestID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) InsertUsageEvent(ctx context.Context, e domain.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, e)
	return nil
}

func (m *mockStore) notifications() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.inserted))
	copy(out, m.inserted)
	return out
}

// Mock Mailer
type sentMail struct {
	to      string
	subject string
	html    string
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	err     error
	failFor map[string]error
}

func (m *mockMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	if err := m.failFor[to]; err != nil {
		return "", err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return fmt.Sprintf("mail-%d", len(m.sent)), nil
}

func (m *mockMailer) deliveries() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

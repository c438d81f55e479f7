package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/core/domain"
	"github.com/nkollections/notifier/internal/core/service"
)

// Mock StoreRepository
type mockStore struct {
	mu        sync.Mutex
	products  []domain.Product
	operators []domain.Operator
	inserted  []domain.Notification
	usage     []domain.UsageEvent
}

func (m *mockStore) LowStockProducts(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.IsLowStock(threshold) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) ActiveOperators(ctx context.Context) ([]domain.Operator, error) {
	return m.operators, nil
}

func (m *mockStore) InsertNotification(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, n)
	return nil
}

func (m *mockStore) CountUsageSince(ctx context.Context, guestID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

// Mock Mailer
type mockMailer struct{}

func (m *mockMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	return "mail-1", nil
}

func newTestHandler(store *mockStore, secret string) *HTTPHandler {
	log := zerolog.Nop()
	notifier := service.NewNotificationService(store, &mockMailer{}, "https://shop.example.com", log)
	scanner := service.NewScanner(store, notifier, 5, 100, 2, log)
	guard := service.NewScanGuard(scanner, nil, log)
	limiter := service.NewRateLimiter(store, 5, log)
	return NewHTTPHandler(guard, limiter, store, secret, log)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(&mockStore{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRunLowStockScan_Unauthorized(t *testing.T) {
	h := newTestHandler(&mockStore{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/scan-low-stock", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	h.RunLowStockScan(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRunLowStockScan_NoSecretConfigured(t *testing.T) {
	h := newTestHandler(&mockStore{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/scan-low-stock", nil)
	w := httptest.NewRecorder()
	h.RunLowStockScan(w, req)

	// No public unauthenticated trigger, even when misconfigured
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRunLowStockScan_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&mockStore{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/scan-low-stock", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.RunLowStockScan(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestRunLowStockScan_Success(t *testing.T) {
	store := &mockStore{
		products: []domain.Product{{ID: "p-1", Name: "Red Scarf", Stock: 3}},
		operators: []domain.Operator{
			{ID: "op-1", Email: "one@example.com", Role: domain.RoleAdmin, Active: true},
			{ID: "op-2", Email: "two@example.com", Role: domain.RoleAdmin, Active: true},
		},
	}
	h := newTestHandler(store, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/scan-low-stock", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.RunLowStockScan(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ScanHTTPResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Notified != 2 {
		t.Errorf("expected 2 notified, got %d", resp.Notified)
	}
	if len(store.inserted) != 2 {
		t.Errorf("expected 2 notifications stored, got %d", len(store.inserted))
	}
}

func tryOnRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return httptest.NewRequest(http.MethodPost, "/api/try-on/sessions", bytes.NewReader(b))
}

func TestCreateTryOnSession_Guest(t *testing.T) {
	store := &mockStore{}
	h := newTestHandler(store, "secret")

	w := httptest.NewRecorder()
	h.CreateTryOnSession(w, tryOnRequest(t, TryOnHTTPRequest{GuestID: "guest-1"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp TryOnHTTPResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a session id")
	}
	if len(store.usage) != 1 {
		t.Fatalf("expected 1 usage event, got %d", len(store.usage))
	}
	if store.usage[0].GuestID != "guest-1" || store.usage[0].Feature != domain.FeatureTryOn {
		t.Errorf("unexpected usage event: %+v", store.usage[0])
	}
}

func TestCreateTryOnSession_GuestOverCap(t *testing.T) {
	store := &mockStore{}
	for i := 0; i < 5; i++ {
		store.usage = append(store.usage, domain.UsageEvent{
			GuestID:   "guest-1",
			Feature:   domain.FeatureTryOn,
			CreatedAt: time.Now().Add(-time.Hour),
		})
	}
	h := newTestHandler(store, "secret")

	w := httptest.NewRecorder()
	h.CreateTryOnSession(w, tryOnRequest(t, TryOnHTTPRequest{GuestID: "guest-1"}))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if len(store.usage) != 5 {
		t.Error("expected no usage event recorded for a blocked request")
	}
}

func TestCreateTryOnSession_AuthenticatedUnlimited(t *testing.T) {
	store := &mockStore{}
	h := newTestHandler(store, "secret")

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		h.CreateTryOnSession(w, tryOnRequest(t, TryOnHTTPRequest{UserID: "user-1"}))
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}
}

func TestCreateTryOnSession_InvalidIdentity(t *testing.T) {
	h := newTestHandler(&mockStore{}, "secret")

	for _, body := range []TryOnHTTPRequest{
		{},
		{UserID: "user-1", GuestID: "guest-1"},
	} {
		w := httptest.NewRecorder()
		h.CreateTryOnSession(w, tryOnRequest(t, body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %+v, got %d", body, w.Code)
		}
	}
}

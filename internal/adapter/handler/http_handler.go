package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/core/domain"
	"github.com/nkollections/notifier/internal/core/service"
	"github.com/nkollections/notifier/internal/port"
)

const scanRequestTimeout = 2 * time.Minute

type HTTPHandler struct {
	scans      *service.ScanGuard
	limiter    *service.RateLimiter
	store      port.StoreRepository
	scanSecret string
	log        zerolog.Logger
}

func NewHTTPHandler(scans *service.ScanGuard, limiter *service.RateLimiter, store port.StoreRepository, scanSecret string, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		scans:      scans,
		limiter:    limiter,
		store:      store,
		scanSecret: scanSecret,
		log:        log.With().Str("component", "http").Logger(),
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/admin/scan-low-stock", h.RunLowStockScan)
	mux.HandleFunc("/api/try-on/sessions", h.CreateTryOnSession)
}

type ScanHTTPResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Candidates int    `json:"candidates"`
	Recipients int    `json:"recipients"`
	Notified   int    `json:"notified"`
	Failed     int    `json:"failed"`
}

// RunLowStockScan is the on-demand trigger, reserved for operators and
// schedulers via a shared bearer secret.
func (h *HTTPHandler) RunLowStockScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.scanSecret == "" {
		writeJSON(w, http.StatusServiceUnavailable, ScanHTTPResponse{
			Success: false,
			Message: "scan trigger is not configured",
		})
		return
	}
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, ScanHTTPResponse{
			Success: false,
			Message: "unauthorized",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scanRequestTimeout)
	defer cancel()

	result, err := h.scans.Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrScanInProgress) {
			writeJSON(w, http.StatusConflict, ScanHTTPResponse{
				Success: false,
				Message: "a scan is already running",
			})
			return
		}

		h.log.Error().Err(err).Msg("low-stock scan failed")
		writeJSON(w, http.StatusInternalServerError, ScanHTTPResponse{
			Success: false,
			Message: "scan failed",
		})
		return
	}

	// Partial delivery is still a success for the trigger layer.
	writeJSON(w, http.StatusOK, ScanHTTPResponse{
		Success:    true,
		Message:    "low-stock scan complete",
		Candidates: result.Candidates,
		Recipients: result.Recipients,
		Notified:   result.Notified,
		Failed:     result.Failed,
	})
}

func (h *HTTPHandler) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	return ok && token == h.scanSecret
}

type TryOnHTTPRequest struct {
	UserID  string `json:"user_id"`
	GuestID string `json:"guest_id"`
}

type TryOnHTTPResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// CreateTryOnSession is the metered endpoint: check the quota, record
// the usage event on success.
func (h *HTTPHandler) CreateTryOnSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TryOnHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, TryOnHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if (req.UserID == "") == (req.GuestID == "") {
		writeJSON(w, http.StatusBadRequest, TryOnHTTPResponse{
			Success: false,
			Message: "exactly one of user_id and guest_id is required",
		})
		return
	}

	identity := domain.Identity{UserID: req.UserID, GuestID: req.GuestID}
	if !h.limiter.Allow(r.Context(), identity) {
		writeJSON(w, http.StatusTooManyRequests, TryOnHTTPResponse{
			Success: false,
			Message: "daily try-on limit reached",
		})
		return
	}

	event := domain.UsageEvent{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		GuestID:   req.GuestID,
		Feature:   domain.FeatureTryOn,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.InsertUsageEvent(r.Context(), event); err != nil {
		h.log.Error().Err(err).Msg("failed to record try-on session")
		writeJSON(w, http.StatusInternalServerError, TryOnHTTPResponse{
			Success: false,
			Message: "internal error",
		})
		return
	}

	writeJSON(w, http.StatusCreated, TryOnHTTPResponse{
		Success:   true,
		Message:   "session recorded",
		SessionID: event.ID,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package handler exposes the promotion engine over HTTP/JSON.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/moderation"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/usecase"
)

// DiscoveryService is the subset of usecase.DiscoveryUsecase used by the handlers.
type DiscoveryService interface {
	Search(ctx context.Context, in usecase.SearchInput) (*usecase.SearchResult, error)
}

type PromotionService interface {
	PurchaseBoost(ctx context.Context, req promotion.PurchaseRequest) (promotion.PromotionStatus, error)
	SetPresence(ctx context.Context, listingID, userID string, active bool) (promotion.PromotionStatus, error)
	TogglePresence(ctx context.Context, listingID, userID string) (promotion.PromotionStatus, error)
	GetStatus(ctx context.Context, listingID string) (promotion.PromotionStatus, error)
}

type ReportService interface {
	FileReport(ctx context.Context, in moderation.ReportInput) (*domain.Report, error)
	ResolveReport(ctx context.Context, reportID, resolution, moderatorID string) (*domain.Report, error)
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	ListPending(ctx context.Context, limit int) ([]*domain.Report, error)
}

// Handler serves the discovery, promotion and moderation routes.
type Handler struct {
	discovery DiscoveryService
	promotion PromotionService
	reports   ReportService
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func New(d DiscoveryService, p PromotionService, r ReportService, m *metrics.MetricsManager, log *logger.Logger) *Handler {
	return &Handler{
		discovery: d,
		promotion: p,
		reports:   r,
		metrics:   m,
		logger:    log.Named("HTTPHandler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// statusFor maps domain sentinels onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownReason),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrInvalidTimestamp):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

// handleError writes the mapped error response and records it under method.
func (h *Handler) handleError(w http.ResponseWriter, method string, start time.Time, err error) {
	code, errType := statusFor(err)
	h.metrics.ObserveAPI(method, start, errType)

	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("method", method), zap.Error(err))
		msg = "internal server error"
	} else {
		h.logger.Debug("Request rejected", zap.String("method", method), zap.Int("status", code), zap.Error(err))
	}
	respondWithJSON(w, code, errorResponse{Error: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, method string, start time.Time, msg string) {
	h.metrics.ObserveAPI(method, start, "invalid_argument")
	respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (h *Handler) ok(w http.ResponseWriter, method string, start time.Time, code int, payload interface{}) {
	h.metrics.ObserveAPI(method, start, "")
	respondWithJSON(w, code, payload)
}

func parseIntQueryParam(r *http.Request, key string, defaultValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}
	return v
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

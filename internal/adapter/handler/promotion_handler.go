package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

type presenceRequest struct {
	Active *bool `json:"active"`
}

// HandleGetStatus serves GET /api/promotions/{listingId}.
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const method = "GetStatus"
	start := time.Now()

	status, err := h.promotion.GetStatus(r.Context(), chi.URLParam(r, "listingId"))
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, status)
}

// HandlePurchaseBoost serves POST /api/promotions/{listingId}/boost. The path id wins over the body.
func (h *Handler) HandlePurchaseBoost(w http.ResponseWriter, r *http.Request) {
	const method = "PurchaseBoost"
	start := time.Now()

	var req promotion.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, method, start, "invalid request body")
		return
	}
	req.ListingID = chi.URLParam(r, "listingId")

	status, err := h.promotion.PurchaseBoost(r.Context(), req)
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, status)
}

// HandleSetPresence serves POST /api/promotions/{listingId}/presence.
func (h *Handler) HandleSetPresence(w http.ResponseWriter, r *http.Request) {
	const method = "SetPresence"
	start := time.Now()

	var req presenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		h.badRequest(w, method, start, `request body must be {"active": true|false}`)
		return
	}
	userID, _, _ := middleware.UserFromContext(r.Context())

	status, err := h.promotion.SetPresence(r.Context(), chi.URLParam(r, "listingId"), userID, *req.Active)
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, status)
}

// HandleTogglePresence serves POST /api/promotions/{listingId}/presence/toggle.
func (h *Handler) HandleTogglePresence(w http.ResponseWriter, r *http.Request) {
	const method = "TogglePresence"
	start := time.Now()
	userID, _, _ := middleware.UserFromContext(r.Context())

	status, err := h.promotion.TogglePresence(r.Context(), chi.URLParam(r, "listingId"), userID)
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, status)
}

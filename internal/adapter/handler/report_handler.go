package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/moderation"
)

type fileReportRequest struct {
	TargetType        string `json:"target_type"`
	TargetID          string `json:"target_id"`
	TargetDisplayName string `json:"target_display_name"`
	Reason            string `json:"reason"`
	Description       string `json:"description"`
}

type resolveReportRequest struct {
	Resolution string `json:"resolution"`
}

type reportView struct {
	ID                string     `json:"id"`
	TargetType        string     `json:"target_type"`
	TargetID          string     `json:"target_id"`
	TargetDisplayName string     `json:"target_display_name,omitempty"`
	Reason            string     `json:"reason"`
	ReasonLabel       string     `json:"reason_label"`
	Description       string     `json:"description,omitempty"`
	ReporterID        string     `json:"reporter_id"`
	Severity          string     `json:"severity"`
	Status            string     `json:"status"`
	Resolution        string     `json:"resolution,omitempty"`
	ResolvedBy        string     `json:"resolved_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}

func toReportView(r *domain.Report) reportView {
	return reportView{
		ID:                r.ID,
		TargetType:        string(r.TargetType),
		TargetID:          r.TargetID,
		TargetDisplayName: r.TargetDisplayName,
		Reason:            string(r.Reason),
		ReasonLabel:       r.Reason.Label(),
		Description:       r.Description,
		ReporterID:        r.ReporterID,
		Severity:          string(r.Severity),
		Status:            string(r.Status),
		Resolution:        string(r.Resolution),
		ResolvedBy:        r.ResolvedBy,
		CreatedAt:         r.CreatedAt,
		ResolvedAt:        r.ResolvedAt,
	}
}

type reasonView struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// HandleListReasons serves GET /api/reports/reasons in display order.
func (h *Handler) HandleListReasons(w http.ResponseWriter, r *http.Request) {
	reasons := domain.Reasons()
	out := make([]reasonView, 0, len(reasons))
	for _, reason := range reasons {
		out = append(out, reasonView{Code: string(reason), Label: reason.Label(), Severity: string(domain.SeverityFor(reason))})
	}
	h.ok(w, "ListReasons", time.Now(), http.StatusOK, out)
}

// HandleFileReport serves POST /api/reports. The reporter is the authenticated caller.
func (h *Handler) HandleFileReport(w http.ResponseWriter, r *http.Request) {
	const method = "FileReport"
	start := time.Now()

	var req fileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, method, start, "invalid request body")
		return
	}
	userID, _, _ := middleware.UserFromContext(r.Context())

	report, err := h.reports.FileReport(r.Context(), moderation.ReportInput{
		TargetType:        req.TargetType,
		TargetID:          req.TargetID,
		TargetDisplayName: req.TargetDisplayName,
		Reason:            req.Reason,
		Description:       req.Description,
		ReporterID:        userID,
	})
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusCreated, toReportView(report))
}

// HandleListPending serves GET /api/admin/reports/pending.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	const method = "ListPendingReports"
	start := time.Now()

	reports, err := h.reports.ListPending(r.Context(), parseIntQueryParam(r, "limit", 0))
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	out := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportView(rep))
	}
	h.ok(w, method, start, http.StatusOK, map[string]interface{}{"reports": out})
}

// HandleGetReport serves GET /api/admin/reports/{reportId}.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const method = "GetReport"
	start := time.Now()

	report, err := h.reports.GetReport(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, toReportView(report))
}

// HandleResolveReport serves POST /api/admin/reports/{reportId}/resolve.
func (h *Handler) HandleResolveReport(w http.ResponseWriter, r *http.Request) {
	const method = "ResolveReport"
	start := time.Now()

	var req resolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, method, start, "invalid request body")
		return
	}
	moderatorID, _, _ := middleware.UserFromContext(r.Context())

	report, err := h.reports.ResolveReport(r.Context(), chi.URLParam(r, "reportId"), req.Resolution, moderatorID)
	if err != nil {
		h.handleError(w, method, start, err)
		return
	}
	h.ok(w, method, start, http.StatusOK, toReportView(report))
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trapadl/spicymarg-funnel/internal/admin"
	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

type loginRequest struct {
	AccessCode string `json:"access_code"`
}

// AdminLogin handles POST /v1/admin/login
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.admin.Login(r.Context(), req.AccessCode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// FunnelStats handles GET /v1/admin/stats
func (h *Handlers) FunnelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.FunnelStats(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stages": stats})
}

type metricsRow struct {
	domain.MonthlyMetrics
	Profit float64 `json:"profit"`
}

// ListMetrics handles GET /v1/admin/metrics
func (h *Handlers) ListMetrics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.admin.ListMetrics(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]metricsRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, metricsRow{MonthlyMetrics: m, Profit: m.Profit()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"months": out})
}

type manualMetricsRequest struct {
	AdSpend float64 `json:"ad_spend"`
	COGS    float64 `json:"cogs"`
	Revenue float64 `json:"revenue"`
}

// SaveMetrics handles PUT /v1/admin/metrics/{month}
func (h *Handlers) SaveMetrics(w http.ResponseWriter, r *http.Request) {
	month, err := admin.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req manualMetricsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.admin.SaveManualMetrics(r.Context(), month, req.AdSpend, req.COGS, req.Revenue); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMetrics handles DELETE /v1/admin/metrics/{month}
func (h *Handlers) DeleteMetrics(w http.ResponseWriter, r *http.Request) {
	month, err := admin.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.admin.DeleteMetrics(r.Context(), month); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AggregateMetrics handles POST /v1/admin/metrics/{month}/aggregate
func (h *Handlers) AggregateMetrics(w http.ResponseWriter, r *http.Request) {
	month, err := admin.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.admin.AggregateMonth(r.Context(), month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metricsRow{MonthlyMetrics: *m, Profit: m.Profit()})
}

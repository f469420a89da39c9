package api

import (
	"net/http"
	"strconv"
	"time"

	"medstock/m/internal/reports"
)

// reportWindow reads the required start_date/end_date pair and the
// optional limit.
func reportWindow(r *http.Request) (start, end time.Time, limit int, msg string) {
	from, to, err := dateRange(r)
	if err != nil {
		return start, end, 0, err.Error()
	}
	if from == nil || to == nil {
		return start, end, 0, "start_date and end_date are required"
	}
	limit = reports.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return start, end, 0, "limit must be a positive integer"
		}
	}
	return *from, *to, limit, ""
}

func (h *Handler) topSelling(w http.ResponseWriter, r *http.Request) {
	start, end, limit, msg := reportWindow(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	rows, err := h.reports.TopSelling(r.Context(), start, end, limit)
	if err != nil {
		respondFailure(w, err, "unable to compute top selling products")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) topProfit(w http.ResponseWriter, r *http.Request) {
	start, end, limit, msg := reportWindow(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	rows, err := h.reports.TopProfit(r.Context(), start, end, limit)
	if err != nil {
		respondFailure(w, err, "unable to compute top profit products")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context(), h.now())
	if err != nil {
		respondFailure(w, err, "unable to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) currency(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.rates.Rates(r.Context()))
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medstock/m/domain"
)

type eventRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	Alarm       bool      `json:"alarm"`
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Date.IsZero() {
		respondError(w, http.StatusBadRequest, "title and date are required")
		return
	}
	e := &domain.CalendarEvent{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: nullIfEmpty(req.Description),
		Date:        req.Date.UTC(),
		Alarm:       req.Alarm,
		UserID:      currentUserID(r),
		CreatedAt:   h.now().UTC(),
	}
	if err := h.store.CreateEvent(r.Context(), e); err != nil {
		respondFailure(w, err, "unable to create event")
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := h.store.ListEvents(r.Context(), currentUserID(r), start, end)
	if err != nil {
		respondFailure(w, err, "unable to list events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEvent(r.Context(), chi.URLParam(r, "id"), currentUserID(r)); err != nil {
		respondFailure(w, err, "unable to delete event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

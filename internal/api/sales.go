package api

import (
	"errors"
	"net/http"

	"medstock/m/internal/ledger"
	"medstock/m/internal/store"
)

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req ledger.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.ledger.RecordSale(r.Context(), currentUserID(r), req)
	if errors.Is(err, ledger.ErrPartialSale) {
		respondError(w, http.StatusInternalServerError, "sale was only partially applied")
		return
	}
	if err != nil {
		respondFailure(w, err, "unable to record sale")
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sales, err := h.store.ListSales(r.Context(), store.SaleFilter{Start: start, End: end})
	if err != nil {
		respondFailure(w, err, "unable to list sales")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

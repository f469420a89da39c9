package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type customerRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		respondError(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	c := &domain.Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     nullIfEmpty(req.Email),
		Address:   nullIfEmpty(req.Address),
		Notes:     nullIfEmpty(req.Notes),
		CreatedAt: h.now().UTC(),
	}
	if err := h.store.CreateCustomer(r.Context(), c); err != nil {
		respondFailure(w, err, "unable to create customer")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondFailure(w, err, "unable to list customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// customerPurchases lists the customer's sales newest first, including
// those of soft-deleted customers.
func (h *Handler) customerPurchases(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSales(r.Context(), store.SaleFilter{CustomerID: chi.URLParam(r, "id"), Limit: 100})
	if err != nil {
		respondFailure(w, err, "unable to list purchases")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var patch domain.CustomerPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "no data to update")
		return
	}
	c, err := h.store.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondFailure(w, err, "unable to update customer")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	if err := h.store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, err, "unable to delete customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}

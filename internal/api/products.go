package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medstock/m/domain"
)

type productRequest struct {
	Name            string          `json:"name"`
	Barcode         string          `json:"barcode"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Quantity        int             `json:"quantity"`
	MinQuantity     int             `json:"min_quantity"`
	UnitType        domain.UnitType `json:"unit_type"`
	PackageQuantity *int            `json:"package_quantity"`
	PurchasePrice   float64         `json:"purchase_price"`
	SalePrice       float64         `json:"sale_price"`
	Description     *string         `json:"description"`
	ImageBase64     *string         `json:"image_base64"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Name == "" || req.Barcode == "" {
		respondError(w, http.StatusBadRequest, "name and barcode are required")
		return
	}
	if req.UnitType == "" {
		req.UnitType = domain.UnitPiece
	}
	if msg := validateProductFields(&req.UnitType, &req.PurchasePrice, &req.SalePrice, req.PackageQuantity); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	now := h.now().UTC()
	p := &domain.Product{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Barcode:         req.Barcode,
		Brand:           req.Brand,
		Category:        req.Category,
		Quantity:        req.Quantity,
		MinQuantity:     req.MinQuantity,
		UnitType:        req.UnitType,
		PackageQuantity: req.PackageQuantity,
		PurchasePrice:   req.PurchasePrice,
		SalePrice:       req.SalePrice,
		Description:     nullIfEmpty(req.Description),
		ImageURL:        nullIfEmpty(req.ImageBase64),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.store.CreateProduct(r.Context(), p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondError(w, http.StatusConflict, "barcode already exists")
			return
		}
		respondFailure(w, err, "unable to create product")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// validateProductFields checks the optional fields shared by create and
// update. It returns an empty string when they are acceptable.
func validateProductFields(unit *domain.UnitType, cost, price *float64, pkg *int) string {
	if unit != nil && !unit.Valid() {
		return "unit_type must be adet or kutu"
	}
	if (cost != nil && *cost < 0) || (price != nil && *price < 0) {
		return "prices must not be negative"
	}
	if pkg != nil && *pkg <= 0 {
		return "package_quantity must be positive"
	}
	return ""
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		respondFailure(w, err, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.reports.LowStock(r.Context())
	if err != nil {
		respondFailure(w, err, "unable to list low stock products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) productByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.ProductByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respondFailure(w, err, "unable to load product")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "no data to update")
		return
	}
	if patch.Barcode != nil && strings.TrimSpace(*patch.Barcode) == "" {
		respondError(w, http.StatusBadRequest, "barcode must not be empty")
		return
	}
	if msg := validateProductFields(patch.UnitType, patch.PurchasePrice, patch.SalePrice, patch.PackageQuantity); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	p, err := h.store.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch, h.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondError(w, http.StatusConflict, "barcode already exists")
			return
		}
		respondFailure(w, err, "unable to update product")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, err, "unable to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

type priceComparison struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	CurrentPrice float64 `json:"current_price"`
	Barcode      string  `json:"barcode"`
}

// priceComparison returns the fields a client needs to search other
// sellers for the product.
func (h *Handler) priceComparison(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.ProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err, "unable to load product")
		return
	}
	respondJSON(w, http.StatusOK, priceComparison{
		ProductID:    p.ID,
		ProductName:  p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		CurrentPrice: p.SalePrice,
		Barcode:      p.Barcode,
	})
}

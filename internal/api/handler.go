package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"medstock/m/domain"
	"medstock/m/internal/auth"
	"medstock/m/internal/currency"
	"medstock/m/internal/ledger"
	"medstock/m/internal/reports"
	"medstock/m/internal/store"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// RateSource serves the currency bundle.
type RateSource interface {
	Rates(ctx context.Context) currency.Rates
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store   store.Store
	tokens  *auth.Tokens
	ledger  *ledger.Ledger
	reports *reports.Aggregator
	rates   RateSource
	origins []string
	now     func() time.Time
}

// New constructs a Handler.
func New(s store.Store, tokens *auth.Tokens, rates RateSource, origins []string) *Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &Handler{
		store:   s,
		tokens:  tokens,
		reports: reports.New(s),
		rates:   rates,
		origins: origins,
		now:     time.Now,
	}
	h.ledger = ledger.New(s, func() time.Time { return h.now() })
	return h
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.authMiddleware)

			pr.Route("/users", func(r chi.Router) {
				r.Get("/", h.listUsers)
				r.Delete("/{id}", h.deleteUser)
			})

			pr.Route("/products", func(r chi.Router) {
				r.Post("/", h.createProduct)
				r.Get("/", h.listProducts)
				r.Get("/low-stock", h.lowStock)
				r.Get("/barcode/{barcode}", h.productByBarcode)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
				r.Get("/{id}/price-comparison", h.priceComparison)
			})

			pr.Route("/sales", func(r chi.Router) {
				r.Post("/", h.createSale)
				r.Get("/", h.listSales)
			})

			pr.Route("/customers", func(r chi.Router) {
				r.Post("/", h.createCustomer)
				r.Get("/", h.listCustomers)
				r.Get("/{id}/purchases", h.customerPurchases)
				r.Put("/{id}", h.updateCustomer)
				r.Delete("/{id}", h.deleteCustomer)
			})

			pr.Route("/reports", func(r chi.Router) {
				r.Get("/top-selling", h.topSelling)
				r.Get("/top-profit", h.topProfit)
				r.Get("/dashboard", h.dashboard)
			})

			pr.Get("/currency", h.currency)

			pr.Route("/calendar", func(r chi.Router) {
				r.Post("/", h.createEvent)
				r.Get("/", h.listEvents)
				r.Delete("/{id}", h.deleteEvent)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.tokens.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		// role comes from the stored user, not the token
		user, err := h.store.UserByID(r.Context(), claims.UserID())
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "user not found")
			return
		}
		if err != nil {
			respondFailure(w, err, "unable to load user")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, user.ID)
		ctx = context.WithValue(ctx, ctxRole, user.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...domain.Role) bool {
	current, ok := r.Context().Value(ctxRole).(domain.Role)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	for _, allowedRole := range allowed {
		if current == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}

// Helpers

func nullIfEmpty(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDate accepts RFC 3339 timestamps and plain dates, which are read as
// midnight UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("dates must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}

// dateRange reads the optional start_date and end_date query parameters.
func dateRange(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	if raw := q.Get("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps domain errors to their status codes. Anything else is
// logged and reported as an internal error with the given message.
func respondFailure(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("%s: %v", message, err)
		respondError(w, http.StatusInternalServerError, message)
	}
}

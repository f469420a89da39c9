// Package store defines the persistence boundary of the backend. The
// application talks to a collection-per-entity store through Store; the
// sqlstore and mongostore packages provide the concrete adapters.
package store

import (
	"context"
	"fmt"
	"time"

	"medstock/m/domain"
)

// TimeLayout is the persisted timestamp format. It is fixed width and always
// UTC so that string comparison in the store matches time order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// DefaultTimeout bounds a single store call when the caller did not set one.
const DefaultTimeout = 5 * time.Second

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// rows written by older clients carry plain RFC 3339
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// ProductSales is one row of the top-selling aggregation.
type ProductSales struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// SaleFilter narrows ListSales. Zero values mean "no constraint"; Start and
// End are inclusive.
type SaleFilter struct {
	Start      *time.Time
	End        *time.Time
	CustomerID string
	Limit      int
}

// SalesSummary is a count and final-amount sum over a set of sales.
type SalesSummary struct {
	Count   int
	Revenue float64
}

type Users interface {
	CreateUser(ctx context.Context, c domain.Credentials) error
	UserByUsername(ctx context.Context, username string) (*domain.Credentials, error)
	UserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Products interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// UpdateProduct applies the set fields of patch and stamps updated_at.
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, at time.Time) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// AdjustProductQuantity adds delta to the stock level in one atomic
	// store operation. It reports whether a product matched; a missing
	// product is not an error.
	AdjustProductQuantity(ctx context.Context, id string, delta int) (bool, error)
	LowStockProducts(ctx context.Context) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
	CountLowStockProducts(ctx context.Context) (int, error)
}

type Customers interface {
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	CustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	// ListCustomers returns non-deleted customers whose name or phone
	// contains search (case-insensitive); an empty search matches all.
	ListCustomers(ctx context.Context, search string) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	// AddCustomerSpent increments total_spent atomically and reports
	// whether a customer matched.
	AddCustomerSpent(ctx context.Context, id string, amount float64) (bool, error)
}

type Sales interface {
	InsertSale(ctx context.Context, s *domain.Sale) error
	// ListSales returns matching sales newest first.
	ListSales(ctx context.Context, f SaleFilter) ([]domain.Sale, error)
	TopSelling(ctx context.Context, start, end time.Time, limit int) ([]ProductSales, error)
	SummarizeSales(ctx context.Context, since time.Time) (SalesSummary, error)
}

type Events interface {
	CreateEvent(ctx context.Context, e *domain.CalendarEvent) error
	ListEvents(ctx context.Context, userID string, start, end *time.Time) ([]domain.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id, userID string) error
}

// Store is the full adapter used by the services.
type Store interface {
	Users
	Products
	Customers
	Sales
	Events
	Close(ctx context.Context) error
}

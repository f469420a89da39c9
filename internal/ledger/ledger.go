// Package ledger records sales and applies their effects on stock and
// customer spend.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

// ErrPartialSale marks a sale whose effects were only partly applied. The
// applied mutations are not undone.
var ErrPartialSale = errors.New("sale partially applied")

// PartialSaleError reports how far RecordSale got before a store call
// failed. Decremented counts the line items whose stock decrement was
// applied.
type PartialSaleError struct {
	SaleID       string
	Decremented  int
	SpendAccrued bool
	Step         string
	Err          error
}

func (e *PartialSaleError) Error() string {
	return fmt.Sprintf("sale %s: %s failed after %d stock decrements (spend accrued: %t): %v",
		e.SaleID, e.Step, e.Decremented, e.SpendAccrued, e.Err)
}

func (e *PartialSaleError) Unwrap() error { return e.Err }

func (e *PartialSaleError) Is(target error) bool { return target == ErrPartialSale }

// Backend is the slice of the store the ledger mutates.
type Backend interface {
	AdjustProductQuantity(ctx context.Context, id string, delta int) (bool, error)
	AddCustomerSpent(ctx context.Context, id string, amount float64) (bool, error)
	InsertSale(ctx context.Context, s *domain.Sale) error
}

var _ Backend = (store.Store)(nil)

type SaleRequest struct {
	Items         []domain.LineItem `json:"items"`
	TotalAmount   float64           `json:"total_amount"`
	Discount      float64           `json:"discount"`
	PaymentMethod string            `json:"payment_method"`
	CustomerID    *string           `json:"customer_id"`
}

func (r SaleRequest) validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("sale has no items: %w", domain.ErrInvalid)
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("item %d has no product_id: %w", i, domain.ErrInvalid)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %d quantity must be positive: %w", i, domain.ErrInvalid)
		}
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return fmt.Errorf("payment_method is required: %w", domain.ErrInvalid)
	}
	return nil
}

type Ledger struct {
	store Backend
	now   func() time.Time
	newID func() string
}

// New returns a ledger over s. A nil now selects time.Now.
func New(s Backend, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: s, now: now, newID: uuid.NewString}
}

// FinalAmount is total minus discount. The result may be negative.
func FinalAmount(total, discount float64) float64 {
	return decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(discount)).InexactFloat64()
}

// RecordSale decrements stock for every line, accrues the final amount on
// the customer when one is given and then persists the sale. Product and
// customer references are not checked: an unknown id matches nothing and
// the sale is still recorded. Totals are taken as supplied.
func (l *Ledger) RecordSale(ctx context.Context, cashierID string, req SaleRequest) (*domain.Sale, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	customerID := req.CustomerID
	if customerID != nil && strings.TrimSpace(*customerID) == "" {
		customerID = nil
	}

	sale := &domain.Sale{
		ID:            l.newID(),
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Discount:      req.Discount,
		FinalAmount:   FinalAmount(req.TotalAmount, req.Discount),
		PaymentMethod: req.PaymentMethod,
		CustomerID:    customerID,
		CashierID:     cashierID,
		CreatedAt:     l.now().UTC(),
	}

	partial := func(step string, decremented int, accrued bool, err error) error {
		perr := &PartialSaleError{SaleID: sale.ID, Decremented: decremented, SpendAccrued: accrued, Step: step, Err: err}
		log.Printf("ledger: %v", perr)
		return perr
	}

	for i, item := range sale.Items {
		ok, err := l.store.AdjustProductQuantity(ctx, item.ProductID, -item.Quantity)
		if err != nil {
			return nil, partial("stock decrement", i, false, err)
		}
		if !ok {
			log.Printf("ledger: sale %s references unknown product %s", sale.ID, item.ProductID)
		}
	}
	decremented := len(sale.Items)

	if sale.CustomerID != nil {
		ok, err := l.store.AddCustomerSpent(ctx, *sale.CustomerID, sale.FinalAmount)
		if err != nil {
			return nil, partial("customer spend", decremented, false, err)
		}
		if !ok {
			log.Printf("ledger: sale %s references unknown customer %s", sale.ID, *sale.CustomerID)
		}
	}

	if err := l.store.InsertSale(ctx, sale); err != nil {
		return nil, partial("sale insert", decremented, sale.CustomerID != nil, err)
	}
	return sale, nil
}

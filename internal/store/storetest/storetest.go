// Package storetest opens throwaway stores for package tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/migrations"
	"medstock/m/internal/store/sqlstore"
)

// SQLite returns a migrated store backed by a private in-memory database.
func SQLite(t *testing.T) *sqlstore.Store {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	s := sqlstore.New(db, 30*time.Second)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// Product inserts a product with the given stock levels and prices.
func Product(t *testing.T, s *sqlstore.Store, id string, qty, minQty int, cost, price float64) *domain.Product {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.Product{
		ID:            id,
		Name:          "product " + id,
		Barcode:       "bc-" + id,
		Brand:         "brand",
		Category:      "category",
		Quantity:      qty,
		MinQuantity:   minQty,
		UnitType:      domain.UnitPiece,
		PurchasePrice: cost,
		SalePrice:     price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

// Customer inserts a live customer with the given spend.
func Customer(t *testing.T, s *sqlstore.Store, id string, spent float64) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		ID:         id,
		Name:       "customer " + id,
		Phone:      "555-" + id,
		TotalSpent: spent,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateCustomer(context.Background(), c))
	return c
}

// Sale inserts a sale created at the given instant.
func Sale(t *testing.T, s *sqlstore.Store, at time.Time, final float64, items ...domain.LineItem) *domain.Sale {
	t.Helper()
	total := 0.0
	for _, it := range items {
		total += it.Total
	}
	sale := &domain.Sale{
		ID:            uuid.NewString(),
		Items:         items,
		TotalAmount:   total,
		Discount:      total - final,
		FinalAmount:   final,
		PaymentMethod: "nakit",
		CashierID:     "cashier",
		CreatedAt:     at,
	}
	require.NoError(t, s.InsertSale(context.Background(), sale))
	return sale
}

// Line builds a line item whose total is price*qty.
func Line(productID string, qty int, price float64) domain.LineItem {
	return domain.LineItem{
		ProductID: productID,
		Name:      "product " + productID,
		Quantity:  qty,
		Price:     price,
		Total:     price * float64(qty),
	}
}

// Package reports derives stock and sales statistics from the store.
package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

// DefaultLimit caps ranked reports when the caller passes no limit.
const DefaultLimit = 10

// Source is the read side of the store used by the reports.
type Source interface {
	LowStockProducts(ctx context.Context) ([]domain.Product, error)
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
	CountLowStockProducts(ctx context.Context) (int, error)
	ListSales(ctx context.Context, f store.SaleFilter) ([]domain.Sale, error)
	TopSelling(ctx context.Context, start, end time.Time, limit int) ([]store.ProductSales, error)
	SummarizeSales(ctx context.Context, since time.Time) (store.SalesSummary, error)
}

type ProductProfit struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalProfit   float64 `json:"total_profit"`
	TotalQuantity int     `json:"total_quantity"`
}

type Dashboard struct {
	TotalProducts   int     `json:"total_products"`
	LowStockCount   int     `json:"low_stock_count"`
	TodaySalesCount int     `json:"today_sales_count"`
	TodayRevenue    float64 `json:"today_revenue"`
	WeekSalesCount  int     `json:"week_sales_count"`
	WeekRevenue     float64 `json:"week_revenue"`
}

type Aggregator struct {
	src Source
}

func New(src Source) *Aggregator {
	return &Aggregator{src: src}
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func (a *Aggregator) LowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := a.src.LowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return products, nil
}

// TopSelling ranks products by units sold in sales created within
// [start, end].
func (a *Aggregator) TopSelling(ctx context.Context, start, end time.Time, limit int) ([]store.ProductSales, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end before start: %w", domain.ErrInvalid)
	}
	rows, err := a.src.TopSelling(ctx, start, end, normLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}
	return rows, nil
}

// TopProfit ranks products by (sale price - current purchase price) * qty
// over sales created within [start, end]. The cost basis is read from the
// product as it is now, so the figure drifts when purchase prices change.
// Lines whose product no longer exists are skipped. The reported name is the
// one recorded on the earliest sale line in the window.
func (a *Aggregator) TopProfit(ctx context.Context, start, end time.Time, limit int) ([]ProductProfit, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end before start: %w", domain.ErrInvalid)
	}
	sales, err := a.src.ListSales(ctx, store.SaleFilter{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("top profit: %w", err)
	}

	type acc struct {
		name   string
		profit decimal.Decimal
		qty    int
	}
	products := map[string]*domain.Product{}
	missing := map[string]bool{}
	totals := map[string]*acc{}

	// sales arrive newest first; names are taken from the oldest line
	for i := len(sales) - 1; i >= 0; i-- {
		for _, item := range sales[i].Items {
			if missing[item.ProductID] {
				continue
			}
			p, ok := products[item.ProductID]
			if !ok {
				p, err = a.src.ProductByID(ctx, item.ProductID)
				if errors.Is(err, domain.ErrNotFound) {
					missing[item.ProductID] = true
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("top profit: %w", err)
				}
				products[item.ProductID] = p
			}
			margin := decimal.NewFromFloat(item.Price).Sub(decimal.NewFromFloat(p.PurchasePrice))
			profit := margin.Mul(decimal.NewFromInt(int64(item.Quantity)))

			t, ok := totals[item.ProductID]
			if !ok {
				t = &acc{name: item.Name}
				totals[item.ProductID] = t
			}
			t.profit = t.profit.Add(profit)
			t.qty += item.Quantity
		}
	}

	out := make([]ProductProfit, 0, len(totals))
	for id, t := range totals {
		out = append(out, ProductProfit{
			ProductID:     id,
			ProductName:   t.name,
			TotalProfit:   t.profit.InexactFloat64(),
			TotalQuantity: t.qty,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProfit != out[j].TotalProfit {
			return out[i].TotalProfit > out[j].TotalProfit
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n := normLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Dashboard summarises the catalogue and sales since UTC midnight of now
// and since seven days before that midnight. Both windows are open ended.
func (a *Aggregator) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.TotalProducts, err = a.src.CountProducts(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	if d.LowStockCount, err = a.src.CountLowStockProducts(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	today := StartOfDay(now)
	day, err := a.src.SummarizeSales(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	week, err := a.src.SummarizeSales(ctx, today.AddDate(0, 0, -7))
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	d.TodaySalesCount, d.TodayRevenue = day.Count, day.Revenue
	d.WeekSalesCount, d.WeekRevenue = week.Count, week.Revenue
	return d, nil
}

// StartOfDay is midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

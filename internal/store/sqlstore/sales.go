package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type saleRow struct {
	ID            string  `db:"id"`
	TotalAmount   float64 `db:"total_amount"`
	Discount      float64 `db:"discount"`
	FinalAmount   float64 `db:"final_amount"`
	PaymentMethod string  `db:"payment_method"`
	CustomerID    *string `db:"customer_id"`
	CashierID     string  `db:"cashier_id"`
	CreatedAt     string  `db:"created_at"`
}

type saleItemRow struct {
	SaleID    string  `db:"sale_id"`
	Position  int     `db:"position"`
	ProductID string  `db:"product_id"`
	Name      string  `db:"name"`
	Quantity  int     `db:"quantity"`
	Price     float64 `db:"price"`
	Total     float64 `db:"total"`
}

const saleColumns = `id, total_amount, discount, final_amount, payment_method, customer_id, cashier_id, created_at`

// InsertSale writes the sale and its line items as one unit; together they
// form the single sale document of the data model.
func (s *Store) InsertSale(ctx context.Context, sale *domain.Sale) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sale insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		sale.ID, sale.TotalAmount, sale.Discount, sale.FinalAmount, sale.PaymentMethod,
		sale.CustomerID, sale.CashierID, store.FormatTime(sale.CreatedAt)); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for i, item := range sale.Items {
		if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO sale_items (sale_id, position, product_id, name, quantity, price, total)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			sale.ID, i, item.ProductID, item.Name, item.Quantity, item.Price, item.Total); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context, f store.SaleFilter) ([]domain.Sale, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var (
		clauses []string
		args    []any
	)
	if f.Start != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, store.FormatTime(*f.Start))
	}
	if f.End != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, store.FormatTime(*f.End))
	}
	if f.CustomerID != "" {
		clauses = append(clauses, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	filter := ""
	if len(clauses) > 0 {
		filter = " WHERE " + strings.Join(clauses, " AND ")
	}
	filter += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		filter += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var rows []saleRow
	if err := s.db.SelectContext(ctx, &rows, s.q(`SELECT `+saleColumns+` FROM sales`+filter), args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Sale{}, nil
	}

	// Items reuse the sales filter; the parameter count must not grow with
	// the number of matching sales.
	var items []saleItemRow
	if err := s.db.SelectContext(ctx, &items, s.q(`SELECT sale_id, position, product_id, name, quantity, price, total
		FROM sale_items WHERE sale_id IN (SELECT id FROM sales`+filter+`)
		ORDER BY sale_id, position`), args...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	itemsBySale := make(map[string][]domain.LineItem, len(rows))
	for _, it := range items {
		itemsBySale[it.SaleID] = append(itemsBySale[it.SaleID], domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Total:     it.Total,
		})
	}

	sales := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		created, err := store.ParseTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		lines := itemsBySale[row.ID]
		if lines == nil {
			lines = []domain.LineItem{}
		}
		sales = append(sales, domain.Sale{
			ID:            row.ID,
			Items:         lines,
			TotalAmount:   row.TotalAmount,
			Discount:      row.Discount,
			FinalAmount:   row.FinalAmount,
			PaymentMethod: row.PaymentMethod,
			CustomerID:    row.CustomerID,
			CashierID:     row.CashierID,
			CreatedAt:     created,
		})
	}
	return sales, nil
}

func (s *Store) TopSelling(ctx context.Context, start, end time.Time, limit int) ([]store.ProductSales, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	type row struct {
		ProductID     string  `db:"product_id"`
		ProductName   string  `db:"product_name"`
		TotalQuantity int     `db:"total_quantity"`
		TotalRevenue  float64 `db:"total_revenue"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows, s.q(`SELECT si.product_id AS product_id,
			MIN(si.name) AS product_name,
			SUM(si.quantity) AS total_quantity,
			COALESCE(SUM(si.total), 0) AS total_revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= ? AND s.created_at <= ?
		GROUP BY si.product_id
		ORDER BY total_quantity DESC, product_id ASC
		LIMIT ?`), store.FormatTime(start), store.FormatTime(end), limit)
	if err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}
	out := make([]store.ProductSales, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ProductSales(r))
	}
	return out, nil
}

func (s *Store) SummarizeSales(ctx context.Context, since time.Time) (store.SalesSummary, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var row struct {
		Count   int     `db:"count"`
		Revenue float64 `db:"revenue"`
	}
	err := s.db.GetContext(ctx, &row, s.q(`SELECT COUNT(*) AS count, COALESCE(SUM(final_amount), 0) AS revenue
		FROM sales WHERE created_at >= ?`), store.FormatTime(since))
	if err != nil {
		return store.SalesSummary{}, fmt.Errorf("summarize sales: %w", err)
	}
	return store.SalesSummary{Count: row.Count, Revenue: row.Revenue}, nil
}

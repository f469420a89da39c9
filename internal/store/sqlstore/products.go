package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type productRow struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	Barcode         string  `db:"barcode"`
	Brand           string  `db:"brand"`
	Category        string  `db:"category"`
	Quantity        int     `db:"quantity"`
	MinQuantity     int     `db:"min_quantity"`
	UnitType        string  `db:"unit_type"`
	PackageQuantity *int    `db:"package_quantity"`
	PurchasePrice   float64 `db:"purchase_price"`
	SalePrice       float64 `db:"sale_price"`
	Description     *string `db:"description"`
	ImageURL        *string `db:"image_url"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

const productColumns = `id, name, barcode, brand, category, quantity, min_quantity, unit_type,
	package_quantity, purchase_price, sale_price, description, image_url, created_at, updated_at`

const lowStockPredicate = `quantity <= min_quantity`

func (r productRow) product() (domain.Product, error) {
	p := domain.Product{
		ID:              r.ID,
		Name:            r.Name,
		Barcode:         r.Barcode,
		Brand:           r.Brand,
		Category:        r.Category,
		Quantity:        r.Quantity,
		MinQuantity:     r.MinQuantity,
		UnitType:        domain.UnitType(r.UnitType),
		PackageQuantity: r.PackageQuantity,
		PurchasePrice:   r.PurchasePrice,
		SalePrice:       r.SalePrice,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
	}
	var err error
	if p.CreatedAt, err = store.ParseTime(r.CreatedAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = store.ParseTime(r.UpdatedAt); err != nil {
		return p, err
	}
	return p, nil
}

func products(rows []productRow) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Barcode, p.Brand, p.Category, p.Quantity, p.MinQuantity, string(p.UnitType),
		p.PackageQuantity, p.PurchasePrice, p.SalePrice, p.Description, p.ImageURL,
		store.FormatTime(p.CreatedAt), store.FormatTime(p.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("barcode %q: %w", p.Barcode, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Store) getProduct(ctx context.Context, where string, arg any) (*domain.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var row productRow
	if err := s.db.GetContext(ctx, &row, s.q(`SELECT `+productColumns+` FROM products WHERE `+where), arg); err != nil {
		return nil, notFound(err, "product")
	}
	p, err := row.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.getProduct(ctx, "id = ?", id)
}

func (s *Store) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return s.getProduct(ctx, "barcode = ?", barcode)
}

func (s *Store) selectProducts(ctx context.Context, query string) ([]domain.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products(rows)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.selectProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
}

func (s *Store) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.selectProducts(ctx, `SELECT `+productColumns+` FROM products WHERE `+lowStockPredicate+` ORDER BY name, id`)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, at time.Time) (*domain.Product, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Barcode != nil {
		add("barcode", *patch.Barcode)
	}
	if patch.Brand != nil {
		add("brand", *patch.Brand)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.MinQuantity != nil {
		add("min_quantity", *patch.MinQuantity)
	}
	if patch.UnitType != nil {
		add("unit_type", string(*patch.UnitType))
	}
	if patch.PackageQuantity != nil {
		add("package_quantity", *patch.PackageQuantity)
	}
	if patch.PurchasePrice != nil {
		add("purchase_price", *patch.PurchasePrice)
	}
	if patch.SalePrice != nil {
		add("sale_price", *patch.SalePrice)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("empty product update: %w", domain.ErrInvalid)
	}
	add("updated_at", store.FormatTime(at))
	args = append(args, id)

	bctx, cancel := s.bound(ctx)
	res, err := s.db.ExecContext(bctx, s.q(`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	cancel()
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("barcode %q: %w", *patch.Barcode, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return s.ProductByID(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.remove(ctx, "products", id, domain.ProductDeletePolicy)
}

func (s *Store) AdjustProductQuantity(ctx context.Context, id string, delta int) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE products SET quantity = quantity + ? WHERE id = ?`), delta, id)
	if err != nil {
		return false, fmt.Errorf("adjust quantity of %s: %w", id, err)
	}
	return affected(res)
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var n int
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products`)
}

func (s *Store) CountLowStockProducts(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products WHERE `+lowStockPredicate)
}

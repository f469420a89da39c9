package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type customerRow struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	Phone      string  `db:"phone"`
	Email      *string `db:"email"`
	Address    *string `db:"address"`
	Notes      *string `db:"notes"`
	TotalSpent float64 `db:"total_spent"`
	Deleted    bool    `db:"deleted"`
	CreatedAt  string  `db:"created_at"`
}

const customerColumns = `id, name, phone, email, address, notes, total_spent, deleted, created_at`

func (r customerRow) customer() (domain.Customer, error) {
	created, err := store.ParseTime(r.CreatedAt)
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:         r.ID,
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		Notes:      r.Notes,
		TotalSpent: r.TotalSpent,
		Deleted:    r.Deleted,
		CreatedAt:  created,
	}, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Notes, c.TotalSpent, c.Deleted, store.FormatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *Store) CustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var row customerRow
	if err := s.db.GetContext(ctx, &row, s.q(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "customer")
	}
	c, err := row.customer()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns live customers whose name or phone contains search,
// ignoring case. Matching is done in Go since SQLite's LOWER folds ASCII
// only. The search text is literal.
func (s *Store) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []customerRow
	if err := s.db.SelectContext(ctx, &rows, s.q(`SELECT `+customerColumns+` FROM customers WHERE NOT deleted ORDER BY name, id`)); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		if needle != "" &&
			!strings.Contains(strings.ToLower(row.Name), needle) &&
			!strings.Contains(strings.ToLower(row.Phone), needle) {
			continue
		}
		c, err := row.customer()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", patch.Name)
	add("phone", patch.Phone)
	add("email", patch.Email)
	add("address", patch.Address)
	add("notes", patch.Notes)
	if len(sets) == 0 {
		return nil, fmt.Errorf("empty customer update: %w", domain.ErrInvalid)
	}
	args = append(args, id)

	bctx, cancel := s.bound(ctx)
	res, err := s.db.ExecContext(bctx, s.q(`UPDATE customers SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	return s.CustomerByID(ctx, id)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.remove(ctx, "customers", id, domain.CustomerDeletePolicy)
}

func (s *Store) AddCustomerSpent(ctx context.Context, id string, amount float64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE customers SET total_spent = total_spent + ? WHERE id = ?`), amount, id)
	if err != nil {
		return false, fmt.Errorf("accrue spend of %s: %w", id, err)
	}
	return affected(res)
}

package sqlstore

import (
	"context"
	"fmt"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type userRow struct {
	ID        string  `db:"id"`
	Username  string  `db:"username"`
	Email     *string `db:"email"`
	Password  string  `db:"password"`
	Role      string  `db:"role"`
	CreatedAt string  `db:"created_at"`
}

func (r userRow) credentials() (*domain.Credentials, error) {
	created, err := store.ParseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Credentials{
		User: domain.User{
			ID:        r.ID,
			Username:  r.Username,
			Email:     r.Email,
			Role:      domain.Role(r.Role),
			CreatedAt: created,
		},
		PasswordHash: r.Password,
	}, nil
}

const userColumns = `id, username, email, password, role, created_at`

func (s *Store) CreateUser(ctx context.Context, c domain.Credentials) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.Username, c.Email, c.PasswordHash, string(c.Role), store.FormatTime(c.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", c.Username, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var row userRow
	if err := s.db.GetContext(ctx, &row, s.q(`SELECT `+userColumns+` FROM users WHERE username = ?`), username); err != nil {
		return nil, notFound(err, "user")
	}
	return row.credentials()
}

func (s *Store) UserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var row userRow
	if err := s.db.GetContext(ctx, &row, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "user")
	}
	c, err := row.credentials()
	if err != nil {
		return nil, err
	}
	return &c.User, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		c, err := row.credentials()
		if err != nil {
			return nil, err
		}
		users = append(users, c.User)
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.remove(ctx, "users", id, domain.HardDelete)
}

// Package sqlstore implements store.Store on top of sqlx. It runs against
// SQLite (modernc) and Postgres (pgx) with the same statements.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

// New wraps an open database. The schema must already exist (see
// migrations.Run). timeout bounds each call; zero selects the default.
func New(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = store.DefaultTimeout
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

const pgUniqueViolation = "23505"

// isUniqueViolation reports a unique or primary key violation from either
// supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// remove deletes a row according to the entity's delete policy.
func (s *Store) remove(ctx context.Context, table, id string, policy domain.DeletePolicy) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var query string
	switch policy {
	case domain.SoftDelete:
		query = "UPDATE " + table + " SET deleted = TRUE WHERE id = ?"
	default:
		query = "DELETE FROM " + table + " WHERE id = ?"
	}
	res, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", table, id, domain.ErrNotFound)
	}
	return nil
}

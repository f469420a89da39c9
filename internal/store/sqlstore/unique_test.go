package sqlstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/m/internal/database"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	dup := fmt.Errorf("insert product: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502", Message: "null value violates not-null constraint"}))
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id TEXT PRIMARY KEY, code TEXT UNIQUE, label TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t (id, code, label) VALUES ('a', 'x', 'l')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO t (id, code, label) VALUES ('b', 'x', 'l')`)
	assert.True(t, isUniqueViolation(err), "unique column: %v", err)
	_, err = db.Exec(`INSERT INTO t (id, code, label) VALUES ('a', 'y', 'l')`)
	assert.True(t, isUniqueViolation(err), "primary key: %v", err)
	_, err = db.Exec(`INSERT INTO t (id, code, label) VALUES ('c', 'z', NULL)`)
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err), "not null: %v", err)
}

func TestIsUniqueViolationIgnoresMessageText(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed: products.barcode")))
}

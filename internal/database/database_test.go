package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/m/internal/migrations"
)

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "pgx", DriverFor("postgres://u:p@localhost/db"))
	assert.Equal(t, "pgx", DriverFor("postgresql://localhost/db"))
	assert.Equal(t, "sqlite", DriverFor("file:medstock.db"))
	assert.Equal(t, "sqlite", DriverFor(":memory:"))
}

func TestConnectAndMigrateTwice(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrations.Run(db))
	require.NoError(t, migrations.Run(db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM products`))
	assert.Zero(t, n)
}

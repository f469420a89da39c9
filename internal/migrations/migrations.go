package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Timestamps are TEXT in the fixed store.TimeLayout so that the same
// statements run on SQLite and Postgres and compare as strings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		barcode TEXT NOT NULL UNIQUE,
		brand TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		min_quantity INTEGER NOT NULL DEFAULT 0,
		unit_type TEXT NOT NULL DEFAULT 'adet',
		package_quantity INTEGER,
		purchase_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		sale_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		description TEXT,
		image_url TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		address TEXT,
		notes TEXT,
		total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		total_amount DOUBLE PRECISION NOT NULL,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		final_amount DOUBLE PRECISION NOT NULL,
		payment_method TEXT NOT NULL,
		customer_id TEXT,
		cashier_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_customer_id ON sales (customer_id);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		sale_id TEXT NOT NULL REFERENCES sales(id),
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		total DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (sale_id, position)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_product_id ON sale_items (product_id);`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		alarm BOOLEAN NOT NULL DEFAULT FALSE,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_user ON calendar_events (user_id, date);`,
}

// Run creates the schema required by the SQL store. It is idempotent.
func Run(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

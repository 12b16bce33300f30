package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	"userId"    TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE,
	phone       TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	password    TEXT NOT NULL,
	"createdAt" TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	seq                  BIGSERIAL,
	"orderId"            TEXT PRIMARY KEY,
	"userId"             TEXT NOT NULL,
	items                JSONB NOT NULL DEFAULT '[]',
	"totalAmount"        INT NOT NULL DEFAULT 0,
	"deliveryFee"        INT NOT NULL DEFAULT 0,
	status               TEXT NOT NULL,
	"paymentMethod"      TEXT NOT NULL,
	"deliveryAddress"    TEXT NOT NULL DEFAULT '',
	"orderDate"          TIMESTAMPTZ NOT NULL,
	"estimatedDelivery"  TIMESTAMPTZ NOT NULL,
	"trackingLocation"   JSONB
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders ("userId", seq DESC);
`

// Open connects to Postgres through the pgx stdlib driver and pings it.
func Open(url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database: empty DATABASE_URL")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the storefront tables when missing. Safe to run on
// every start.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("database: apply schema: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dishes (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		price       DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		category    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image       TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'on' CHECK (status IN ('on', 'off')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            TEXT PRIMARY KEY,
		items         JSONB NOT NULL DEFAULT '[]',
		total_amount  DOUBLE PRECISION NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'completed')),
		table_number  TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		create_time   TIMESTAMPTZ NOT NULL DEFAULT now(),
		complete_time TIMESTAMPTZ,
		chef_id       INTEGER,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_items_idx ON orders USING GIN (items jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS orders_create_time_idx ON orders (create_time DESC)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id         SERIAL PRIMARY KEY,
		order_id   TEXT NOT NULL UNIQUE,
		rating     SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		content    TEXT NOT NULL DEFAULT '',
		images     TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS chefs (
		id         INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		avatar     TEXT NOT NULL DEFAULT '/images/chef-avatar.png',
		rating     DOUBLE PRECISION NOT NULL DEFAULT 4.8 CHECK (rating BETWEEN 0 AND 5),
		status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`INSERT INTO chefs (id, name) VALUES (1, '主厨') ON CONFLICT (id) DO NOTHING`,
}

// EnsureSchema is idempotent and runs at startup.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

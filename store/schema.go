package store

import (
	"context"
	"fmt"

	"github.com/kcmvp/crm/entity"
	"github.com/kcmvp/crm/sqlx"
)

var schemas = map[sqlx.Dialect][]string{
	sqlx.SQLite: {
		`CREATE TABLE IF NOT EXISTS crm_customer (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL UNIQUE,
			phone VARCHAR(20) NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS crm_product (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS crm_order (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES crm_customer (id),
			total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
			order_date TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS crm_order_customer_id ON crm_order (customer_id)`,
		`CREATE TABLE IF NOT EXISTS crm_order_products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER NOT NULL REFERENCES crm_order (id),
			product_id INTEGER NOT NULL REFERENCES crm_product (id),
			UNIQUE (order_id, product_id)
		)`,
	},
	sqlx.Postgres: {
		`CREATE TABLE IF NOT EXISTS crm_customer (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL UNIQUE,
			phone VARCHAR(20) NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS crm_product (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS crm_order (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES crm_customer (id),
			total_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
			order_date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS crm_order_customer_id ON crm_order (customer_id)`,
		`CREATE TABLE IF NOT EXISTS crm_order_products (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES crm_order (id),
			product_id BIGINT NOT NULL REFERENCES crm_product (id),
			UNIQUE (order_id, product_id)
		)`,
	},
	// The mysql DSN needs parseTime=true so DATETIME columns scan into time.Time.
	sqlx.MySQL: {
		`CREATE TABLE IF NOT EXISTS crm_customer (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL UNIQUE,
			phone VARCHAR(20) NULL,
			created_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS crm_product (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			stock INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS crm_order (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
			order_date DATETIME(6) NOT NULL,
			INDEX crm_order_customer_id (customer_id),
			FOREIGN KEY (customer_id) REFERENCES crm_customer (id)
		)`,
		`CREATE TABLE IF NOT EXISTS crm_order_products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			UNIQUE (order_id, product_id),
			FOREIGN KEY (order_id) REFERENCES crm_order (id),
			FOREIGN KEY (product_id) REFERENCES crm_product (id)
		)`,
	},
}

// Migrate creates the CRM tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts, ok := schemas[s.db.Dialect()]
	if !ok {
		return fmt.Errorf("no schema for dialect %s", s.db.Dialect())
	}
	return s.InTx(ctx, func(tx *Store) error {
		for _, stmt := range stmts {
			if _, err := tx.ex.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
		}
		return nil
	})
}

// Reset deletes every row in foreign key order: links, orders, customers, products.
func (s *Store) Reset(ctx context.Context) error {
	deletes := []func() (string, []any, error){
		func() (string, []any, error) { return sqlx.DeleteSQL[entity.OrderProduct](sqlx.All[entity.OrderProduct]()) },
		func() (string, []any, error) { return sqlx.DeleteSQL[entity.Order](sqlx.All[entity.Order]()) },
		func() (string, []any, error) { return sqlx.DeleteSQL[entity.Customer](sqlx.All[entity.Customer]()) },
		func() (string, []any, error) { return sqlx.DeleteSQL[entity.Product](sqlx.All[entity.Product]()) },
	}
	return s.InTx(ctx, func(tx *Store) error {
		for _, build := range deletes {
			query, args, err := build()
			if err != nil {
				return err
			}
			if _, err := tx.exec(ctx, query, args); err != nil {
				return fmt.Errorf("failed to reset data: %w", err)
			}
		}
		return nil
	})
}

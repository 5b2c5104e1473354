// Package postgres holds the sqlx-backed order repository.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"intakebot/internal/orders"
)

// Repo implements orders.Repository on top of PostgreSQL.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

const insertOrderSQL = `
INSERT INTO orders (id, req_number, name, phone, address, description, status, media, comment, created_at)
VALUES (:id, :req_number, :name, :phone, :address, :description, :status, :media, :comment, :created_at)
ON CONFLICT (id) DO NOTHING`

// CreateOrder inserts the order. A duplicate identity returns
// orders.ErrAlreadyExists and leaves the stored row untouched.
func (r *Repo) CreateOrder(ctx context.Context, o orders.Order) error {
	res, err := r.db.NamedExecContext(ctx, insertOrderSQL, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if affected == 0 {
		return orders.ErrAlreadyExists
	}
	return nil
}

func (r *Repo) SetStatus(ctx context.Context, orderID string, st orders.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`, st, orderID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *Repo) AppendUpdate(ctx context.Context, u orders.Update) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO order_updates (order_id, kind, media, comment, created_at)
VALUES (:order_id, :kind, :media, :comment, :created_at)`, u)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	return nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (orders.Order, error) {
	var o orders.Order
	err := r.db.GetContext(ctx, &o, `
SELECT id, req_number, name, phone, address, description, status, media, comment, created_at
FROM orders WHERE id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.Order{}, orders.ErrNotFound
	}
	if err != nil {
		return orders.Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

func (r *Repo) ListUpdates(ctx context.Context, orderID string) ([]orders.Update, error) {
	var out []orders.Update
	err := r.db.SelectContext(ctx, &out, `
SELECT id, order_id, kind, media, comment, created_at
FROM order_updates WHERE order_id = $1
ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select updates: %w", err)
	}
	return out, nil
}

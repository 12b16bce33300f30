package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const orderColumns = `"orderId", "userId", items, "totalAmount", "deliveryFee", status, "paymentMethod", "deliveryAddress", "orderDate", "estimatedDelivery", "trackingLocation"`

const (
	insertOrderQuery = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	listOrdersByUserQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE "userId" = $1
		ORDER BY seq DESC
	`
	listOrdersByUserAndStatusQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE "userId" = $1 AND status = ANY($2::text[])
		ORDER BY seq DESC
	`
	getOrderQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE "orderId" = $1
	`
	lockOrderQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE "orderId" = $1
		FOR UPDATE
	`
	updateStatusQuery = `
		UPDATE orders
		SET status = $1,
			"trackingLocation" = $2
		WHERE "orderId" = $3
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, o Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	locJSON, err := marshalLocation(o.TrackingLocation)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID,
		o.UserID,
		itemsJSON,
		o.TotalAmount,
		o.DeliveryFee,
		string(o.Status),
		string(o.PaymentMethod),
		o.DeliveryAddress,
		o.OrderDate,
		o.EstimatedDelivery,
		locJSON,
	)
	return err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, statuses ...Status) ([]Order, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = r.db.QueryContext(ctx, listOrdersByUserQuery, userID)
	} else {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		rows, err = r.db.QueryContext(ctx, listOrdersByUserAndStatusQuery, userID, pq.Array(names))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// UpdateStatus locks the row so concurrent transitions are checked against
// the committed status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, to Status, loc *TrackingLocation) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	current, err := scanOrder(tx.QueryRowContext(ctx, lockOrderQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	next, err := applyTransition(current, to, loc)
	if err != nil {
		return Order{}, err
	}
	locJSON, err := marshalLocation(next.TrackingLocation)
	if err != nil {
		return Order{}, err
	}
	if _, err := tx.ExecContext(ctx, updateStatusQuery, string(next.Status), locJSON, id); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return next, nil
}

func marshalLocation(loc *TrackingLocation) (any, error) {
	if loc == nil {
		return nil, nil
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanOrder(scanner rowScanner) (Order, error) {
	var (
		o        Order
		items    []byte
		status   string
		payment  string
		location []byte
	)
	if err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.TotalAmount,
		&o.DeliveryFee,
		&status,
		&payment,
		&o.DeliveryAddress,
		&o.OrderDate,
		&o.EstimatedDelivery,
		&location,
	); err != nil {
		return Order{}, err
	}

	o.Status = Status(status)
	o.PaymentMethod = PaymentMethod(payment)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items of %s: %w", o.ID, err)
	}
	if len(location) > 0 {
		o.TrackingLocation = &TrackingLocation{}
		if err := json.Unmarshal(location, o.TrackingLocation); err != nil {
			return Order{}, fmt.Errorf("decode tracking location of %s: %w", o.ID, err)
		}
	}
	return o, nil
}

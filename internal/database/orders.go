package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, category, status, destination, scheduled_for,
notes, print_size, print_color, subtotal, delivery_fee, service_fee, amount_price,
created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Category, &o.Status, &o.Destination, &o.ScheduledFor,
		&o.Notes, &o.PrintSize, &o.PrintColor, &o.Subtotal, &o.DeliveryFee, &o.ServiceFee,
		&o.AmountPrice, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// GetNextOrderNumber returns the next sequential order number. Concurrent
// callers can race to the same value; the unique constraint on order_number
// turns the loser into a retryable 23505.
const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INT)), 0) + 1
FROM orders
`

func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (
  order_number, category, status, destination, scheduled_for, notes,
  print_size, print_color, subtotal, delivery_fee, service_fee, amount_price,
  created_by
)
VALUES ($1, $2, 'PENDING', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber  string
	Category     string
	Destination  pgtype.Text
	ScheduledFor pgtype.Text
	Notes        pgtype.Text
	PrintSize    pgtype.Text
	PrintColor   pgtype.Text
	Subtotal     pgtype.Numeric
	DeliveryFee  pgtype.Numeric
	ServiceFee   pgtype.Numeric
	AmountPrice  pgtype.Numeric
	CreatedBy    uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.Category, arg.Destination, arg.ScheduledFor, arg.Notes,
		arg.PrintSize, arg.PrintColor, arg.Subtotal, arg.DeliveryFee, arg.ServiceFee,
		arg.AmountPrice, arg.CreatedBy,
	)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, name, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, name, quantity, unit_price, line_total
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	Name      string
	Quantity  string
	UnitPrice pgtype.Numeric
	LineTotal pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.Name, arg.Quantity, arg.UnitPrice, arg.LineTotal,
	)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.UnitPrice, &it.LineTotal)
	return it, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1::uuid IS NULL OR created_by = $1)
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR category = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

type ListOrdersParams struct {
	CreatedBy pgtype.UUID
	Status    pgtype.Text
	Category  pgtype.Text
	Limit     int32
	Offset    int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.CreatedBy, arg.Status, arg.Category, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, name, quantity, unit_price, line_total
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderStatus is a compare-and-set: it only applies when the order is
// still in the status the caller read. Zero rows means the order moved on.
const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.PrevStatus))
}

// CancelOrderWithinWindow enforces the whole cancellation precondition in one
// statement: creator match, pending status, and age inside the window. Zero
// rows means at least one guard failed; the caller refetches to say which.
const cancelOrderWithinWindow = `
UPDATE orders
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1
  AND created_by = $2
  AND status = 'PENDING'
  AND created_at > now() - make_interval(secs => $3)
RETURNING ` + orderColumns

type CancelOrderWithinWindowParams struct {
	ID            uuid.UUID
	CreatedBy     uuid.UUID
	WindowSeconds int32
}

func (q *Queries) CancelOrderWithinWindow(ctx context.Context, arg CancelOrderWithinWindowParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrderWithinWindow, arg.ID, arg.CreatedBy, arg.WindowSeconds))
}

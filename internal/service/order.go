package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pasuyo-app/api/internal/database"
	"github.com/pasuyo-app/api/internal/enum"
	"github.com/pasuyo-app/api/internal/policy"
	"github.com/pasuyo-app/api/internal/pricing"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyQuantity      = errors.New("every item must have a quantity")
	ErrMissingDestination = errors.New("destination is required for DELIVER_ITEMS orders")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOrderOwner      = errors.New("order belongs to another user")
	ErrRepostNotCancelled = errors.New("only cancelled orders can be reposted")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and repost orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// ScheduleRequest is an optional "schedule for later" time from the picker.
type ScheduleRequest struct {
	Hour   int
	Minute int
	Period string
}

// CreateOrderRequest is the validated input for creating an order. The
// computed total is never taken from the caller; it is always recomputed
// from items + category + printing selection here.
type CreateOrderRequest struct {
	CreatedBy   uuid.UUID
	Category    string
	Destination string
	Notes       string
	Schedule    *ScheduleRequest
	Printing    pricing.PrintingSelection
	Items       []pricing.LineItem
}

// CreateOrderResult is the created order with its items and the breakdown
// that priced it.
type CreateOrderResult struct {
	Order     database.Order
	Items     []database.OrderItem
	Breakdown pricing.Breakdown
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService using the wall clock.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, now: time.Now}
}

// WithClock overrides the clock. Tests use this; production keeps time.Now.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CreateOrder validates, prices, and creates an order atomically. Retries up
// to maxOrderNumberRetries times on order_number unique constraint violations
// (concurrent transactions can read the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !isValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if pricing.HasEmptyQuantities(req.Items) {
		return nil, ErrEmptyQuantity
	}
	if req.Category == enum.CategoryDeliverItems && strings.TrimSpace(req.Destination) == "" {
		return nil, ErrMissingDestination
	}

	var scheduledFor string
	if req.Schedule != nil {
		if err := policy.ValidateSchedule(req.Schedule.Hour, req.Schedule.Minute, req.Schedule.Period, s.now()); err != nil {
			return nil, err
		}
		scheduledFor = fmt.Sprintf("%d:%02d %s", req.Schedule.Hour, req.Schedule.Minute, req.Schedule.Period)
	}

	breakdown := pricing.Compute(req.Category, req.Items, req.Printing)

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, scheduledFor, breakdown)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// RepostOrder clones a cancelled order into a brand-new pending one. The
// amount is recomputed from the current catalogs rather than copied: prices
// may have changed since the original was posted.
func (s *OrderService) RepostOrder(ctx context.Context, orderID, requestedBy uuid.UUID) (*CreateOrderResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.repostOrderTx(ctx, orderID, requestedBy)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, scheduledFor string, breakdown pricing.Breakdown) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	result, err := insertOrder(ctx, store, req, scheduledFor, breakdown)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// repostOrderTx reads the source order and creates its clone inside one
// transaction so the clone always reflects a consistent source snapshot.
func (s *OrderService) repostOrderTx(ctx context.Context, orderID, requestedBy uuid.UUID) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	src, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if src.CreatedBy != requestedBy {
		return nil, ErrNotOrderOwner
	}
	if src.Status != enum.OrderStatusCancelled {
		return nil, ErrRepostNotCancelled
	}

	srcItems, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	items := make([]pricing.LineItem, len(srcItems))
	for i, it := range srcItems {
		items[i] = pricing.LineItem{Name: it.Name, Quantity: it.Quantity}
	}

	printing := pricing.PrintingSelection{}
	if src.PrintSize.Valid {
		printing.Size = src.PrintSize.String
	}
	if src.PrintColor.Valid {
		printing.Color = src.PrintColor.String
	}

	req := CreateOrderRequest{
		CreatedBy:   requestedBy,
		Category:    src.Category,
		Destination: src.Destination.String,
		Notes:       src.Notes.String,
		Printing:    printing,
		Items:       items,
	}

	// The original schedule time is stale by definition and is not carried over.
	breakdown := pricing.Compute(req.Category, req.Items, req.Printing)

	result, err := insertOrder(ctx, store, req, "", breakdown)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// insertOrder generates the order number and writes the order plus its named
// items through the given store.
func insertOrder(ctx context.Context, store OrderStore, req CreateOrderRequest, scheduledFor string, breakdown pricing.Breakdown) (*CreateOrderResult, error) {
	nextNum, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("PSY-%03d", nextNum)

	printSize := pgtype.Text{}
	printColor := pgtype.Text{}
	if req.Category == enum.CategoryPrinting {
		if req.Printing.Size != "" {
			printSize = pgtype.Text{String: req.Printing.Size, Valid: true}
		}
		if req.Printing.Color != "" {
			printColor = pgtype.Text{String: req.Printing.Color, Valid: true}
		}
	}

	destination := pgtype.Text{}
	if req.Destination != "" {
		destination = pgtype.Text{String: req.Destination, Valid: true}
	}

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	scheduled := pgtype.Text{}
	if scheduledFor != "" {
		scheduled = pgtype.Text{String: scheduledFor, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:  orderNumber,
		Category:     req.Category,
		Destination:  destination,
		ScheduledFor: scheduled,
		Notes:        notes,
		PrintSize:    printSize,
		PrintColor:   printColor,
		Subtotal:     decimalToNumeric(breakdown.Subtotal),
		DeliveryFee:  decimalToNumeric(breakdown.DeliveryFee),
		ServiceFee:   decimalToNumeric(breakdown.ServiceFee),
		AmountPrice:  decimalToNumeric(breakdown.Total),
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var itemResults []database.OrderItem
	for _, li := range req.Items {
		if li.Name == "" {
			continue
		}
		unit := pricing.UnitPrice(req.Category, li.Name, req.Printing)
		qty := pricing.ParseQuantity(li.Quantity)
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: decimalToNumeric(unit),
			LineTotal: decimalToNumeric(unit.Mul(qty)),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		itemResults = append(itemResults, item)
	}

	return &CreateOrderResult{
		Order:     order,
		Items:     itemResults,
		Breakdown: breakdown,
	}, nil
}

// --- Helpers ---

func isValidCategory(s string) bool {
	switch s {
	case enum.CategoryDeliverItems, enum.CategoryFoodDelivery,
		enum.CategorySchoolMaterials, enum.CategoryPrinting:
		return true
	}
	return false
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

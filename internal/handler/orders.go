package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pasuyo-app/api/internal/database"
	"github.com/pasuyo-app/api/internal/enum"
	"github.com/pasuyo-app/api/internal/middleware"
	"github.com/pasuyo-app/api/internal/policy"
	"github.com/pasuyo-app/api/internal/pricing"
	"github.com/pasuyo-app/api/internal/service"
	"github.com/pasuyo-app/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	RepostOrder(ctx context.Context, orderID, requestedBy uuid.UUID) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrderWithinWindow(ctx context.Context, arg database.CancelOrderWithinWindowParams) (database.Order, error)
}

// Broadcaster pushes order events to connected WebSocket clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToOrder(orderID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
	now   func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub, now: time.Now}
}

// WithClock overrides the handler clock. Tests use this to pin the
// cancellation window.
func (h *OrderHandler) WithClock(now func() time.Time) *OrderHandler {
	h.now = now
	return h
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter: /orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/quote", h.Quote)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/cancel-window", h.CancelWindow)
	r.Delete("/{id}", h.Cancel)
	r.Post("/{id}/repost", h.Repost)
}

// RegisterStatusRoute registers the status transition endpoint separately so
// the router can wrap it in a role check.
func (h *OrderHandler) RegisterStatusRoute(r chi.Router) {
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type scheduleRequest struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Period string `json:"period"`
}

type printingRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

type lineItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type createOrderRequest struct {
	Category    string            `json:"category"`
	Destination string            `json:"destination"`
	Notes       string            `json:"notes"`
	Schedule    *scheduleRequest  `json:"schedule"`
	Printing    *printingRequest  `json:"printing"`
	Items       []lineItemRequest `json:"items"`
}

type quoteRowResponse struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type quoteResponse struct {
	Rows          []quoteRowResponse `json:"rows"`
	Subtotal      string             `json:"subtotal"`
	TotalQuantity string             `json:"total_quantity"`
	DeliveryFee   string             `json:"delivery_fee"`
	ServiceFee    string             `json:"service_fee"`
	Total         string             `json:"total"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

type orderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Category     string              `json:"category"`
	Status       string              `json:"status"`
	Destination  *string             `json:"destination"`
	ScheduledFor *string             `json:"scheduled_for"`
	Notes        *string             `json:"notes"`
	PrintSize    *string             `json:"print_size"`
	PrintColor   *string             `json:"print_color"`
	Subtotal     string              `json:"subtotal"`
	DeliveryFee  string              `json:"delivery_fee"`
	ServiceFee   string              `json:"service_fee"`
	Total        string              `json:"total"`
	CreatedBy    uuid.UUID           `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Items        []orderItemResponse `json:"items,omitempty"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type cancelWindowResponse struct {
	CanCancel        bool  `json:"can_cancel"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	WindowSeconds    int64 `json:"window_seconds"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Quote handles POST /orders/quote. It prices a draft without persisting
// anything, so the client can show a live total while the user types.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := toLineItems(req.Items)
	breakdown := pricing.Compute(req.Category, items, toPrintingSelection(req.Printing))
	writeJSON(w, http.StatusOK, toQuoteResponse(breakdown))
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcReq := service.CreateOrderRequest{
		CreatedBy:   claims.UserID,
		Category:    req.Category,
		Destination: req.Destination,
		Notes:       req.Notes,
		Printing:    toPrintingSelection(req.Printing),
		Items:       toLineItems(req.Items),
	}
	if req.Schedule != nil {
		svcReq.Schedule = &service.ScheduleRequest{
			Hour:   req.Schedule.Hour,
			Minute: req.Schedule.Minute,
			Period: req.Schedule.Period,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), svcReq)
	if err != nil {
		// Map known service errors to appropriate HTTP status codes.
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result))
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	// Parse pagination
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}

	// Customers only see their own orders. Runners and admins browse the
	// whole board, optionally narrowed to their own with ?mine=true.
	if claims.Role == enum.UserRoleCustomer || r.URL.Query().Get("mine") == "true" {
		params.CreatedBy = pgtype.UUID{Bytes: claims.UserID, Valid: true}
	}

	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("category"); s != "" {
		params.Category = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}

	writeJSON(w, http.StatusOK, resp)
}

// CancelWindow handles GET /orders/{id}/cancel-window. The client polls this
// to drive the countdown next to the cancel button.
func (h *OrderHandler) CancelWindow(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	now := h.now()
	canCancel := order.CreatedBy == claims.UserID &&
		policy.CanCancel(order.Status, order.CreatedAt, now)

	writeJSON(w, http.StatusOK, cancelWindowResponse{
		CanCancel:        canCancel,
		RemainingSeconds: int64(policy.RemainingSeconds(order.CreatedAt, now)),
		WindowSeconds:    policy.CancelWindowSeconds,
	})
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	// Fetch current order to validate transition
	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     req.Status,
		PrevStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows updated means the status changed between our read and write.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastOrderEvent("order.updated", updated)
	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Cancel handles DELETE /orders/{id}. Only the creator may cancel, only while
// the order is still PENDING and inside the cancellation window. The SQL
// enforces all three guards atomically; on zero rows we refetch to report
// which one failed.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	cancelled, err := h.store.CancelOrderWithinWindow(r.Context(), database.CancelOrderWithinWindowParams{
		ID:            orderID,
		CreatedBy:     claims.UserID,
		WindowSeconds: policy.CancelWindowSeconds,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, fetchErr := h.store.GetOrder(r.Context(), orderID)
			if fetchErr != nil {
				if errors.Is(fetchErr, pgx.ErrNoRows) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
					return
				}
				log.Printf("ERROR: get order for cancel: %v", fetchErr)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			if current.CreatedBy != claims.UserID {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the order creator can cancel"})
				return
			}
			if current.Status == enum.OrderStatusCancelled {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "order is already cancelled"})
				return
			}
			if current.Status != enum.OrderStatusPending {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "order has already been accepted"})
				return
			}
			writeJSON(w, http.StatusConflict, map[string]string{"error": "cancellation window has elapsed"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastOrderEvent("order.cancelled", cancelled)
	writeJSON(w, http.StatusOK, dbOrderToResponse(cancelled))
}

// Repost handles POST /orders/{id}/repost. It clones a cancelled order into a
// fresh PENDING one, repriced against the current catalogs.
func (h *OrderHandler) Repost(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	result, err := h.svc.RepostOrder(r.Context(), orderID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrNotOrderOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the order creator can repost"})
		case errors.Is(err, service.ErrRepostNotCancelled):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "only cancelled orders can be reposted"})
		default:
			log.Printf("ERROR: repost order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result))
}

// --- Helpers ---

func (h *OrderHandler) broadcastOrderEvent(eventType string, o database.Order) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"order_id": o.ID.String(),
		"status":   o.Status,
	})
	if err != nil {
		return
	}
	h.hub.BroadcastToOrder(o.ID, ws.Event{Type: eventType, Payload: payload})
}

func toLineItems(items []lineItemRequest) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	for i, item := range items {
		out[i] = pricing.LineItem{Name: item.Name, Quantity: item.Quantity}
	}
	return out
}

func toPrintingSelection(p *printingRequest) pricing.PrintingSelection {
	if p == nil {
		return pricing.PrintingSelection{}
	}
	return pricing.PrintingSelection{Size: p.Size, Color: p.Color}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidCategory) ||
		errors.Is(err, service.ErrEmptyQuantity) ||
		errors.Is(err, service.ErrMissingDestination) ||
		errors.Is(err, policy.ErrInvalidHour) ||
		errors.Is(err, policy.ErrInvalidMinute) ||
		errors.Is(err, policy.ErrInvalidPeriod) ||
		errors.Is(err, policy.ErrTimeInPast)
}

func toQuoteResponse(b pricing.Breakdown) quoteResponse {
	rows := make([]quoteRowResponse, len(b.Rows))
	for i, row := range b.Rows {
		rows[i] = quoteRowResponse{
			Name:      row.Name,
			Quantity:  row.Quantity.String(),
			UnitPrice: row.UnitPrice.StringFixed(2),
			LineTotal: row.LineTotal.StringFixed(2),
		}
	}
	return quoteResponse{
		Rows:          rows,
		Subtotal:      b.Subtotal.StringFixed(2),
		TotalQuantity: b.TotalQuantity.String(),
		DeliveryFee:   b.DeliveryFee.StringFixed(2),
		ServiceFee:    b.ServiceFee.StringFixed(2),
		Total:         b.Total.StringFixed(2),
	}
}

func toOrderResponse(result *service.CreateOrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(item)
	}
	return resp
}

// dbOrderToResponse converts a database.Order to an orderResponse.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Category:    o.Category,
		Status:      o.Status,
		Subtotal:    numericToString(o.Subtotal),
		DeliveryFee: numericToString(o.DeliveryFee),
		ServiceFee:  numericToString(o.ServiceFee),
		Total:       numericToString(o.AmountPrice),
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}

	if o.Destination.Valid {
		resp.Destination = &o.Destination.String
	}
	if o.ScheduledFor.Valid {
		resp.ScheduledFor = &o.ScheduledFor.String
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.PrintSize.Valid {
		resp.PrintSize = &o.PrintSize.String
	}
	if o.PrintColor.Valid {
		resp.PrintColor = &o.PrintColor.String
	}

	return resp
}

func dbOrderItemToResponse(item database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitPrice: numericToString(item.UnitPrice),
		LineTotal: numericToString(item.LineTotal),
	}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// isValidOrderStatus checks if the given status is a valid order status.
func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending,
		enum.OrderStatusAccepted,
		enum.OrderStatusInProgress,
		enum.OrderStatusDelivered,
		enum.OrderStatusCompleted,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions defines valid status transitions for runners working an
// order. Cancellation by the creator goes through Cancel, not this map.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusAccepted, enum.OrderStatusCancelled},
	enum.OrderStatusAccepted:   {enum.OrderStatusInProgress, enum.OrderStatusCancelled},
	enum.OrderStatusInProgress: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	enum.OrderStatusDelivered:  {enum.OrderStatusCompleted},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}

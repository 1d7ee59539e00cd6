package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pasuyo-app/api/internal/database"
	"github.com/pasuyo-app/api/internal/middleware"
	"github.com/pasuyo-app/api/internal/ws"
)

// MessageStore defines the database methods needed by message handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MessageStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	CreateMessage(ctx context.Context, arg database.CreateMessageParams) (database.Message, error)
	ListMessagesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Message, error)
}

// MessageHandler handles the per-order chat endpoints.
type MessageHandler struct {
	store MessageStore
	hub   Broadcaster
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(store MessageStore, hub Broadcaster) *MessageHandler {
	return &MessageHandler{store: store, hub: hub}
}

// RegisterRoutes registers message endpoints on the given Chi router.
// Expected to be mounted inside an authenticated subrouter: /orders
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}/messages", h.List)
	r.Post("/{id}/messages", h.Create)
}

// --- Request / Response types ---

type createMessageRequest struct {
	Body string `json:"body"`
}

type messageResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Handlers ---

// List handles GET /orders/{id}/messages.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if _, err := h.store.GetOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	messages, err := h.store.ListMessagesByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]messageResponse, len(messages))
	for i, m := range messages {
		resp[i] = toMessageResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /orders/{id}/messages. The new message is persisted and
// then pushed to everyone watching the order's room.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	if _, err := h.store.GetOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for message: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	msg, err := h.store.CreateMessage(r.Context(), database.CreateMessageParams{
		OrderID:  orderID,
		SenderID: claims.UserID,
		Body:     req.Body,
	})
	if err != nil {
		log.Printf("ERROR: create message: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toMessageResponse(msg)
	if h.hub != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.hub.BroadcastToOrder(orderID, ws.Event{Type: "message.created", Payload: payload})
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func toMessageResponse(m database.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		OrderID:   m.OrderID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

package database

import (
	"context"

	"github.com/google/uuid"
)

const createMessage = `
INSERT INTO messages (order_id, sender_id, body)
VALUES ($1, $2, $3)
RETURNING id, order_id, sender_id, body, created_at
`

type CreateMessageParams struct {
	OrderID  uuid.UUID
	SenderID uuid.UUID
	Body     string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRow(ctx, createMessage, arg.OrderID, arg.SenderID, arg.Body)
	var m Message
	err := row.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.Body, &m.CreatedAt)
	return m, err
}

const listMessagesByOrder = `
SELECT id, order_id, sender_id, body, created_at
FROM messages
WHERE order_id = $1
ORDER BY created_at ASC
`

func (q *Queries) ListMessagesByOrder(ctx context.Context, orderID uuid.UUID) ([]Message, error) {
	rows, err := q.db.Query(ctx, listMessagesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

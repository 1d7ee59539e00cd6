package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	CreatedAt      time.Time
}

type Order struct {
	ID           uuid.UUID
	OrderNumber  string
	Category     string
	Status       string
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem keeps Quantity as the raw text the user entered so redisplay and
// repost re-run the calculator over exactly the submitted data.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Name      string
	Quantity  string
	UnitPrice pgtype.Numeric
	LineTotal pgtype.Numeric
}

type Message struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SenderID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

package querier

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Slot struct {
	ID         int64
	VenueID    int64
	StartTime  pgtype.Timestamptz
	EndTime    pgtype.Timestamptz
	PriceCents int64
	Status     string
	HeldUntil  pgtype.Timestamptz
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type Booking struct {
	ID        int64
	SlotID    int64
	UserID    int64
	Status    string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	RunAt     pgtype.Timestamptz
	Status    string
	Attempts  int32
	LastError pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type IdempotencyKey struct {
	Key             uuid.UUID
	UserID          int64
	Endpoint        string
	RequestHash     string
	Status          string
	ResultBookingID pgtype.Int8
	ExpiresAt       pgtype.Timestamptz
	CreatedAt       pgtype.Timestamptz
}

package shared

import (
	"time"

	"github.com/google/uuid"
)

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          int64
	Endpoint        string
	Status          string
	RequestHash     string
	ResultBookingID *int64
	ExpiresAt       time.Time
}

const (
	JobStatusQueued = "queued"
	JobStatusSent   = "sent"
	JobStatusFailed = "failed"
)

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int32
}

type JobStatusUpdate struct {
	ID        uuid.UUID
	Status    string
	LastError *string
	// RetryAt reschedules a job left queued after a failed attempt.
	RetryAt *time.Time
}

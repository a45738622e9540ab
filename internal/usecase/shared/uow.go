package shared

import (
	"context"
	"time"

	"playpal-booking/internal/domain/booking"
	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra/querier"

	"github.com/google/uuid"
)

//go:generate mockgen -source=uow.go -destination=../../../tests/mock/shared/uow_mock.go -package=sharedmock

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db querier.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db querier.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Slots() SlotRepository
	Bookings() BookingRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() querier.DBTX
}

type CommandReads interface {
	SlotByID(ctx context.Context, id int64) (*slot.Slot, error)
	BookingByID(ctx context.Context, id int64) (*booking.Booking, error)
	IdempotencyByKey(ctx context.Context, key uuid.UUID, userID int64) (*IdempotencyRecord, error)
}

// SlotRepository applies slot transitions as single conditional statements.
// A transition whose predicate does not match fails with infra.KindNotFound.
type SlotRepository interface {
	Hold(ctx context.Context, tx querier.DBTX, slotID int64, now, heldUntil time.Time) (*slot.Slot, error)
	Book(ctx context.Context, tx querier.DBTX, slotID int64, now time.Time) error
	ReclaimExpired(ctx context.Context, tx querier.DBTX, now time.Time, limit int32) ([]int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx querier.DBTX, b *booking.Booking, now time.Time) (*booking.Booking, error)
	Confirm(ctx context.Context, tx querier.DBTX, bookingID, slotID int64, now time.Time) error
	ExpirePending(ctx context.Context, tx querier.DBTX, slotIDs []int64, now time.Time) ([]*booking.Booking, error)
}

type IdempotencyRepository interface {
	TryClaim(ctx context.Context, tx querier.DBTX, key uuid.UUID, userID int64, endpoint, requestHash string, now, expiresAt time.Time) (bool, error)
	Complete(ctx context.Context, tx querier.DBTX, key uuid.UUID, userID, bookingID int64) error
	DeleteExpired(ctx context.Context, tx querier.DBTX, now time.Time) (int64, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx querier.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	ListQueued(ctx context.Context, tx querier.DBTX, now time.Time, limit int32) ([]*NotificationJob, error)
	UpdateJobStatus(ctx context.Context, tx querier.DBTX, update JobStatusUpdate) error
}

package queries

import (
	"context"
	"time"

	"playpal-booking/internal/domain/booking"
	"playpal-booking/internal/infra"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/errs"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/queries/booking_mock.go -package=queriesmock

type BookingView struct {
	ID        int64     `json:"id"`
	SlotID    int64     `json:"slot_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VenueID       int64      `json:"venue_id"`
	SlotStart     time.Time  `json:"slot_start"`
	SlotEnd       time.Time  `json:"slot_end"`
	PriceCents    int64      `json:"price_cents"`
	SlotStatus    string     `json:"slot_status"`
	SlotHeldUntil *time.Time `json:"slot_held_until,omitempty"`

	HoldRemainingSeconds int64 `json:"hold_remaining_seconds"`
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id int64) (*BookingView, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id int64) (*BookingView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
	clock clock.Clock
}

func NewBookingQueries(store BookingReadStore, clk clock.Clock) BookingQueries {
	return &bookingQueriesImpl{store: store, clock: clk}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id int64) (*BookingView, error) {
	if id <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	// Only a pending booking is waiting on the hold it was created with.
	if booking.Status(view.Status) == booking.StatusPending {
		s, err := reconstructSlot(view.SlotID, view.VenueID, view.SlotStart, view.SlotEnd, view.PriceCents, view.SlotStatus, view.SlotHeldUntil)
		if err != nil {
			return nil, err
		}
		view.HoldRemainingSeconds = int64(s.HoldRemaining(q.clock.Now()).Seconds())
	}
	return view, nil
}

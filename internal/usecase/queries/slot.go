package queries

import (
	"context"
	"time"

	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/errs"
)

//go:generate mockgen -source=slot.go -destination=../../../tests/mock/queries/slot_mock.go -package=queriesmock

// Read models (DTO for read side)
type SlotView struct {
	ID         int64      `json:"id"`
	VenueID    int64      `json:"venue_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	PriceCents int64      `json:"price_cents"`
	Status     string     `json:"status"`
	HeldUntil  *time.Time `json:"held_until,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Derived at read time from held_until and the current clock.
	HoldRemainingSeconds int64 `json:"hold_remaining_seconds"`
	Reclaimable          bool  `json:"reclaimable"`
}

type SlotReadStore interface {
	FindByID(ctx context.Context, id int64) (*SlotView, error)
	FindByVenueBetween(ctx context.Context, venueID int64, from, to time.Time) ([]*SlotView, error)
}

type SlotQueries interface {
	GetByID(ctx context.Context, id int64) (*SlotView, error)
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]*SlotView, error)
}

type slotQueriesImpl struct {
	store SlotReadStore
	clock clock.Clock
}

func NewSlotQueries(store SlotReadStore, clk clock.Clock) SlotQueries {
	return &slotQueriesImpl{store: store, clock: clk}
}

func (q *slotQueriesImpl) GetByID(ctx context.Context, id int64) (*SlotView, error) {
	if id <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrSlotNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	if err := view.applyCountdown(q.clock.Now()); err != nil {
		return nil, err
	}
	return view, nil
}

// ListByVenueAndDate returns the venue's slots starting on the given UTC calendar day.
func (q *slotQueriesImpl) ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]*SlotView, error) {
	if venueID <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	y, m, d := date.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	views, err := q.store.FindByVenueBetween(ctx, venueID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	now := q.clock.Now()
	for _, v := range views {
		if err := v.applyCountdown(now); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (v *SlotView) applyCountdown(now time.Time) error {
	s, err := reconstructSlot(v.ID, v.VenueID, v.StartTime, v.EndTime, v.PriceCents, v.Status, v.HeldUntil)
	if err != nil {
		return err
	}
	v.HoldRemainingSeconds = int64(s.HoldRemaining(now).Seconds())
	v.Reclaimable = s.IsHoldLapsedAt(now)
	return nil
}

// reconstructSlot rebuilds the entity from a read row so countdowns follow
// the same rules as the write side.
func reconstructSlot(id, venueID int64, start, end time.Time, priceCents int64, status string, heldUntil *time.Time) (*slot.Slot, error) {
	tr, err := slot.NewTimeRange(start, end)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "slot %d", id), errs.ErrStoreUnavailable)
	}
	price, err := slot.NewMoney(priceCents)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "slot %d", id), errs.ErrStoreUnavailable)
	}
	s, err := slot.ReconstructSlot(id, venueID, tr, price, slot.Status(status), heldUntil, time.Time{}, time.Time{})
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "slot %d", id), errs.ErrStoreUnavailable)
	}
	return s, nil
}

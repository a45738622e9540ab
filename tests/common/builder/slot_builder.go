//go:build unit || e2e

package builder

import (
	"time"

	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

type SlotBuilder struct {
	ID         int64
	VenueID    int64
	StartTime  time.Time
	EndTime    time.Time
	PriceCents int64
	Status     slot.Status
	HeldUntil  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewSlotBuilder() *SlotBuilder {
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	created := start.Add(-72 * time.Hour)
	return &SlotBuilder{
		ID:         42,
		VenueID:    1,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		PriceCents: 2500,
		Status:     slot.StatusAvailable,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func (b *SlotBuilder) With(mutate func(*SlotBuilder)) *SlotBuilder {
	mutate(b)
	return b
}

// Held sets the slot to held until the given deadline.
func (b *SlotBuilder) Held(until time.Time) *SlotBuilder {
	b.Status = slot.StatusHeld
	b.HeldUntil = &until
	return b
}

func (b *SlotBuilder) Booked() *SlotBuilder {
	b.Status = slot.StatusBooked
	b.HeldUntil = nil
	return b
}

// Build methods
func (b *SlotBuilder) BuildDomain() (*slot.Slot, error) {
	tr, err := slot.NewTimeRange(b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	price, err := slot.NewMoney(b.PriceCents)
	if err != nil {
		return nil, err
	}
	return slot.ReconstructSlot(b.ID, b.VenueID, tr, price, b.Status, b.HeldUntil, b.CreatedAt, b.UpdatedAt)
}

func (b *SlotBuilder) BuildInfra() querier.Slot {
	row := querier.Slot{
		ID:         b.ID,
		VenueID:    b.VenueID,
		StartTime:  pgtype.Timestamptz{Time: b.StartTime, Valid: true},
		EndTime:    pgtype.Timestamptz{Time: b.EndTime, Valid: true},
		PriceCents: b.PriceCents,
		Status:     b.Status.String(),
		CreatedAt:  pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:  pgtype.Timestamptz{Time: b.UpdatedAt, Valid: true},
	}
	if b.HeldUntil != nil {
		row.HeldUntil = pgtype.Timestamptz{Time: *b.HeldUntil, Valid: true}
	}
	return row
}

func (b *SlotBuilder) BuildView() *queries.SlotView {
	return &queries.SlotView{
		ID:         b.ID,
		VenueID:    b.VenueID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		PriceCents: b.PriceCents,
		Status:     b.Status.String(),
		HeldUntil:  b.HeldUntil,
		UpdatedAt:  b.UpdatedAt,
	}
}

func Timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

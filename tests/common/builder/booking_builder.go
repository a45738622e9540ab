//go:build unit || e2e

package builder

import (
	"time"

	"playpal-booking/internal/domain/booking"
	reqdto "playpal-booking/internal/handler/dto/request"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

type BookingBuilder struct {
	ID        int64
	SlotID    int64
	UserID    int64
	Status    booking.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:        100,
		SlotID:    42,
		UserID:    7,
		Status:    booking.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	return booking.ReconstructBooking(b.ID, b.SlotID, b.UserID, b.Status, b.CreatedAt, b.UpdatedAt)
}

func (b *BookingBuilder) BuildInfra() querier.Booking {
	return querier.Booking{
		ID:        b.ID,
		SlotID:    b.SlotID,
		UserID:    b.UserID,
		Status:    string(b.Status),
		CreatedAt: pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt: pgtype.Timestamptz{Time: b.UpdatedAt, Valid: true},
	}
}

func (b *BookingBuilder) BuildView(s *SlotBuilder) *queries.BookingView {
	return &queries.BookingView{
		ID:            b.ID,
		SlotID:        b.SlotID,
		UserID:        b.UserID,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		VenueID:       s.VenueID,
		SlotStart:     s.StartTime,
		SlotEnd:       s.EndTime,
		PriceCents:    s.PriceCents,
		SlotStatus:    s.Status.String(),
		SlotHeldUntil: s.HeldUntil,
	}
}

func (b *BookingBuilder) BuildHoldRequestDTO() reqdto.HoldRequest {
	return reqdto.HoldRequest{
		SlotID: b.SlotID,
		UserID: b.UserID,
	}
}

func (b *BookingBuilder) BuildConfirmRequestDTO() reqdto.ConfirmRequest {
	return reqdto.ConfirmRequest{
		BookingID: b.ID,
		SlotID:    b.SlotID,
	}
}

package repository

import (
	"context"
	"time"

	"playpal-booking/internal/domain/booking"
	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/infra/repository/converter"
	"playpal-booking/internal/pkg/pgconv"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/repository/booking_mock.go -package=repositorymock

type BookingWriteQueries interface {
	CreateBooking(ctx context.Context, db querier.DBTX, arg querier.CreateBookingParams) (querier.Booking, error)
	ConfirmBooking(ctx context.Context, db querier.DBTX, arg querier.ConfirmBookingParams) (int64, error)
	ExpirePendingBookingsBySlotIDs(ctx context.Context, db querier.DBTX, arg querier.ExpirePendingBookingsBySlotIDsParams) ([]querier.Booking, error)
}

type BookingRepository struct {
	queries BookingWriteQueries
	db      querier.DBTX
}

func NewBookingRepository(queries BookingWriteQueries, db querier.DBTX) *BookingRepository {
	return &BookingRepository{
		queries: queries,
		db:      db,
	}
}

func (r *BookingRepository) Create(ctx context.Context, tx querier.DBTX, b *booking.Booking, now time.Time) (*booking.Booking, error) {
	row, err := r.queries.CreateBooking(ctx, tx, converter.BookingToInfra(b, now))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to create booking", err)
	}

	created, err := converter.BookingToDomain(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert created booking", err, infra.KindDBFailure)
	}
	return created, nil
}

func (r *BookingRepository) Confirm(ctx context.Context, tx querier.DBTX, bookingID, slotID int64, now time.Time) error {
	params := querier.ConfirmBookingParams{
		ID:     bookingID,
		SlotID: slotID,
		Now:    pgconv.TimeToPgtype(now),
	}

	affected, err := r.queries.ConfirmBooking(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to confirm booking", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("no pending booking for slot", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) ExpirePending(ctx context.Context, tx querier.DBTX, slotIDs []int64, now time.Time) ([]*booking.Booking, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}

	params := querier.ExpirePendingBookingsBySlotIDsParams{
		SlotIDs: slotIDs,
		Now:     pgconv.TimeToPgtype(now),
	}

	rows, err := r.queries.ExpirePendingBookingsBySlotIDs(ctx, tx, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire pending bookings", err)
	}

	expired, err := converter.BookingsToDomain(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert expired bookings", err, infra.KindDBFailure)
	}
	return expired, nil
}

package readstore

import (
	"context"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"
	"playpal-booking/internal/usecase/queries"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/readstore/booking_mock.go -package=readstoremock

type BookingReadQueries interface {
	GetBookingByID(ctx context.Context, db querier.DBTX, id int64) (querier.Booking, error)
	GetBookingViewByID(ctx context.Context, db querier.DBTX, id int64) (querier.GetBookingViewByIDRow, error)
}

type BookingReadStore struct {
	queries BookingReadQueries
	db      querier.DBTX
}

func NewBookingReadStore(queries BookingReadQueries, db querier.DBTX) *BookingReadStore {
	return &BookingReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id int64) (*queries.BookingView, error) {
	row, err := r.queries.GetBookingViewByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	return &queries.BookingView{
		ID:            row.ID,
		SlotID:        row.SlotID,
		UserID:        row.UserID,
		Status:        row.Status,
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:     pgconv.TimeFromPgtype(row.UpdatedAt),
		VenueID:       row.VenueID,
		SlotStart:     pgconv.TimeFromPgtype(row.StartTime),
		SlotEnd:       pgconv.TimeFromPgtype(row.EndTime),
		PriceCents:    row.PriceCents,
		SlotStatus:    row.SlotStatus,
		SlotHeldUntil: pgconv.TimePtrFromPgtype(row.HeldUntil),
	}, nil
}

// FindRecordByID returns the bare booking row, used by command-side checks.
func (r *BookingReadStore) FindRecordByID(ctx context.Context, id int64) (querier.Booking, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return querier.Booking{}, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return querier.Booking{}, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return row, nil
}

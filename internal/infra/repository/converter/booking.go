package converter

import (
	"time"

	"playpal-booking/internal/domain/booking"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"
)

func BookingToInfra(b *booking.Booking, now time.Time) querier.CreateBookingParams {
	return querier.CreateBookingParams{
		SlotID: b.SlotID(),
		UserID: b.UserID(),
		Now:    pgconv.TimeToPgtype(now),
	}
}

func BookingToDomain(row querier.Booking) (*booking.Booking, error) {
	return booking.ReconstructBooking(
		row.ID,
		row.SlotID,
		row.UserID,
		booking.Status(row.Status),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}

func BookingsToDomain(rows []querier.Booking) ([]*booking.Booking, error) {
	result := make([]*booking.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := BookingToDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, nil
}

package converter

import (
	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/errs"
	"playpal-booking/internal/pkg/pgconv"
)

func SlotToDomain(row querier.Slot) (*slot.Slot, error) {
	timeRange, err := slot.NewTimeRange(pgconv.TimeFromPgtype(row.StartTime), pgconv.TimeFromPgtype(row.EndTime))
	if err != nil {
		return nil, errs.Wrapf(err, "slot %d", row.ID)
	}
	price, err := slot.NewMoney(row.PriceCents)
	if err != nil {
		return nil, errs.Wrapf(err, "slot %d", row.ID)
	}

	return slot.ReconstructSlot(
		row.ID,
		row.VenueID,
		timeRange,
		price,
		slot.Status(row.Status),
		pgconv.TimePtrFromPgtype(row.HeldUntil),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}

package readstore

import (
	"context"
	"time"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"
	"playpal-booking/internal/usecase/queries"
)

//go:generate mockgen -source=slot.go -destination=../../../tests/mock/readstore/slot_mock.go -package=readstoremock

type SlotReadQueries interface {
	GetSlotByID(ctx context.Context, db querier.DBTX, id int64) (querier.Slot, error)
	ListSlotsByVenueBetween(ctx context.Context, db querier.DBTX, arg querier.ListSlotsByVenueBetweenParams) ([]querier.Slot, error)
}

type SlotReadStore struct {
	queries SlotReadQueries
	db      querier.DBTX
}

func NewSlotReadStore(queries SlotReadQueries, db querier.DBTX) *SlotReadStore {
	return &SlotReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *SlotReadStore) FindByID(ctx context.Context, id int64) (*queries.SlotView, error) {
	row, err := r.queries.GetSlotByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find slot by ID", err)
	}

	return rowToSlotView(row), nil
}

func (r *SlotReadStore) FindByVenueBetween(ctx context.Context, venueID int64, from, to time.Time) ([]*queries.SlotView, error) {
	params := querier.ListSlotsByVenueBetweenParams{
		VenueID: venueID,
		From:    pgconv.TimeToPgtype(from),
		To:      pgconv.TimeToPgtype(to),
	}

	rows, err := r.queries.ListSlotsByVenueBetween(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list venue slots", err)
	}

	result := make([]*queries.SlotView, len(rows))
	for i, row := range rows {
		result[i] = rowToSlotView(row)
	}
	return result, nil
}

func rowToSlotView(row querier.Slot) *queries.SlotView {
	return &queries.SlotView{
		ID:         row.ID,
		VenueID:    row.VenueID,
		StartTime:  pgconv.TimeFromPgtype(row.StartTime),
		EndTime:    pgconv.TimeFromPgtype(row.EndTime),
		PriceCents: row.PriceCents,
		Status:     row.Status,
		HeldUntil:  pgconv.TimePtrFromPgtype(row.HeldUntil),
		UpdatedAt:  pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

// FindRecordByID returns the bare slot row, used by command-side checks.
func (r *SlotReadStore) FindRecordByID(ctx context.Context, id int64) (querier.Slot, error) {
	row, err := r.queries.GetSlotByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return querier.Slot{}, infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return querier.Slot{}, infra.WrapRepoErr("failed to find slot by ID", err)
	}
	return row, nil
}

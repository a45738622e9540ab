package repository

import (
	"context"
	"time"

	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/infra/repository/converter"
	"playpal-booking/internal/pkg/pgconv"
)

//go:generate mockgen -source=slot.go -destination=../../../tests/mock/repository/slot_mock.go -package=repositorymock

type SlotWriteQueries interface {
	HoldSlot(ctx context.Context, db querier.DBTX, arg querier.HoldSlotParams) (querier.Slot, error)
	BookSlot(ctx context.Context, db querier.DBTX, arg querier.BookSlotParams) (int64, error)
	ReclaimExpiredSlots(ctx context.Context, db querier.DBTX, arg querier.ReclaimExpiredSlotsParams) ([]int64, error)
}

type SlotRepository struct {
	queries SlotWriteQueries
	db      querier.DBTX
}

func NewSlotRepository(queries SlotWriteQueries, db querier.DBTX) *SlotRepository {
	return &SlotRepository{
		queries: queries,
		db:      db,
	}
}

func (r *SlotRepository) Hold(ctx context.Context, tx querier.DBTX, slotID int64, now, heldUntil time.Time) (*slot.Slot, error) {
	params := querier.HoldSlotParams{
		ID:        slotID,
		Now:       pgconv.TimeToPgtype(now),
		HeldUntil: pgconv.TimeToPgtype(heldUntil),
	}

	row, err := r.queries.HoldSlot(ctx, tx, params)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("slot not holdable", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to hold slot", err)
	}

	held, err := converter.SlotToDomain(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert held slot", err, infra.KindDBFailure)
	}
	return held, nil
}

func (r *SlotRepository) Book(ctx context.Context, tx querier.DBTX, slotID int64, now time.Time) error {
	params := querier.BookSlotParams{
		ID:  slotID,
		Now: pgconv.TimeToPgtype(now),
	}

	affected, err := r.queries.BookSlot(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to book slot", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("slot not held by an active hold", nil, infra.KindNotFound)
	}
	return nil
}

func (r *SlotRepository) ReclaimExpired(ctx context.Context, tx querier.DBTX, now time.Time, limit int32) ([]int64, error) {
	params := querier.ReclaimExpiredSlotsParams{
		Now:   pgconv.TimeToPgtype(now),
		Limit: limit,
	}

	ids, err := r.queries.ReclaimExpiredSlots(ctx, tx, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to reclaim expired slots", err)
	}
	return ids, nil
}

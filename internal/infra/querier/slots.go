package querier

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const slotColumns = `id, venue_id, start_time, end_time, price_cents, status, held_until, created_at, updated_at`

func scanSlot(row pgx.Row) (Slot, error) {
	var s Slot
	err := row.Scan(
		&s.ID,
		&s.VenueID,
		&s.StartTime,
		&s.EndTime,
		&s.PriceCents,
		&s.Status,
		&s.HeldUntil,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

const holdSlot = `
UPDATE slots
SET status = 'held', held_until = $3, updated_at = $2
WHERE id = $1
  AND (status = 'available' OR (status = 'held' AND held_until < $2))
RETURNING ` + slotColumns

type HoldSlotParams struct {
	ID        int64
	Now       pgtype.Timestamptz
	HeldUntil pgtype.Timestamptz
}

// HoldSlot returns pgx.ErrNoRows when the slot is missing, booked, or held
// by a hold that has not lapsed.
func (q *Queries) HoldSlot(ctx context.Context, db DBTX, arg HoldSlotParams) (Slot, error) {
	row := db.QueryRow(ctx, holdSlot, arg.ID, arg.Now, arg.HeldUntil)
	return scanSlot(row)
}

const bookSlot = `
UPDATE slots
SET status = 'booked', held_until = NULL, updated_at = $2
WHERE id = $1
  AND status = 'held'
  AND held_until >= $2
`

type BookSlotParams struct {
	ID  int64
	Now pgtype.Timestamptz
}

func (q *Queries) BookSlot(ctx context.Context, db DBTX, arg BookSlotParams) (int64, error) {
	result, err := db.Exec(ctx, bookSlot, arg.ID, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Rows another sweeper already locked are skipped and picked up next run.
const reclaimExpiredSlots = `
WITH lapsed AS (
    SELECT id
    FROM slots
    WHERE status = 'held' AND held_until < $1
    ORDER BY held_until
    LIMIT $2
    FOR UPDATE SKIP LOCKED
)
UPDATE slots s
SET status = 'available', held_until = NULL, updated_at = $1
FROM lapsed
WHERE s.id = lapsed.id
RETURNING s.id
`

type ReclaimExpiredSlotsParams struct {
	Now   pgtype.Timestamptz
	Limit int32
}

func (q *Queries) ReclaimExpiredSlots(ctx context.Context, db DBTX, arg ReclaimExpiredSlotsParams) ([]int64, error) {
	rows, err := db.Query(ctx, reclaimExpiredSlots, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

const getSlotByID = `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

func (q *Queries) GetSlotByID(ctx context.Context, db DBTX, id int64) (Slot, error) {
	row := db.QueryRow(ctx, getSlotByID, id)
	return scanSlot(row)
}

const listSlotsByVenueBetween = `
SELECT ` + slotColumns + `
FROM slots
WHERE venue_id = $1
  AND start_time >= $2
  AND start_time < $3
ORDER BY start_time, id
`

type ListSlotsByVenueBetweenParams struct {
	VenueID int64
	From    pgtype.Timestamptz
	To      pgtype.Timestamptz
}

func (q *Queries) ListSlotsByVenueBetween(ctx context.Context, db DBTX, arg ListSlotsByVenueBetweenParams) ([]Slot, error) {
	rows, err := db.Query(ctx, listSlotsByVenueBetween, arg.VenueID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

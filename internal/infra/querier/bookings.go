package querier

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingColumns = `id, slot_id, user_id, status, created_at, updated_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.SlotID,
		&b.UserID,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

const createBooking = `
INSERT INTO bookings (slot_id, user_id, status, created_at, updated_at)
VALUES ($1, $2, 'pending', $3, $3)
RETURNING ` + bookingColumns

type CreateBookingParams struct {
	SlotID int64
	UserID int64
	Now    pgtype.Timestamptz
}

func (q *Queries) CreateBooking(ctx context.Context, db DBTX, arg CreateBookingParams) (Booking, error) {
	row := db.QueryRow(ctx, createBooking, arg.SlotID, arg.UserID, arg.Now)
	return scanBooking(row)
}

const confirmBooking = `
UPDATE bookings
SET status = 'confirmed', updated_at = $3
WHERE id = $1
  AND slot_id = $2
  AND status = 'pending'
`

type ConfirmBookingParams struct {
	ID     int64
	SlotID int64
	Now    pgtype.Timestamptz
}

func (q *Queries) ConfirmBooking(ctx context.Context, db DBTX, arg ConfirmBookingParams) (int64, error) {
	result, err := db.Exec(ctx, confirmBooking, arg.ID, arg.SlotID, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const expirePendingBookingsBySlotIDs = `
UPDATE bookings
SET status = 'expired', updated_at = $2
WHERE slot_id = ANY($1::bigint[])
  AND status = 'pending'
RETURNING ` + bookingColumns

type ExpirePendingBookingsBySlotIDsParams struct {
	SlotIDs []int64
	Now     pgtype.Timestamptz
}

func (q *Queries) ExpirePendingBookingsBySlotIDs(ctx context.Context, db DBTX, arg ExpirePendingBookingsBySlotIDsParams) ([]Booking, error) {
	rows, err := db.Query(ctx, expirePendingBookingsBySlotIDs, arg.SlotIDs, arg.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const getBookingByID = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

func (q *Queries) GetBookingByID(ctx context.Context, db DBTX, id int64) (Booking, error) {
	row := db.QueryRow(ctx, getBookingByID, id)
	return scanBooking(row)
}

const getBookingViewByID = `
SELECT b.id, b.slot_id, b.user_id, b.status, b.created_at, b.updated_at,
       s.venue_id, s.start_time, s.end_time, s.price_cents, s.status, s.held_until
FROM bookings b
JOIN slots s ON s.id = b.slot_id
WHERE b.id = $1
`

type GetBookingViewByIDRow struct {
	ID         int64
	SlotID     int64
	UserID     int64
	Status     string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
	VenueID    int64
	StartTime  pgtype.Timestamptz
	EndTime    pgtype.Timestamptz
	PriceCents int64
	SlotStatus string
	HeldUntil  pgtype.Timestamptz
}

func (q *Queries) GetBookingViewByID(ctx context.Context, db DBTX, id int64) (GetBookingViewByIDRow, error) {
	var i GetBookingViewByIDRow
	err := db.QueryRow(ctx, getBookingViewByID, id).Scan(
		&i.ID,
		&i.SlotID,
		&i.UserID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.VenueID,
		&i.StartTime,
		&i.EndTime,
		&i.PriceCents,
		&i.SlotStatus,
		&i.HeldUntil,
	)
	return i, err
}

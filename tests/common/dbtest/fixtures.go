//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestVenue(t *testing.T, db DBLike, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO venues (name, sport_type, location) VALUES ($1, 'football', 'Test Park') RETURNING id",
		name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestSlot inserts a one-hour available slot starting at start.
func CreateTestSlot(t *testing.T, db DBLike, venueID int64, start time.Time, priceCents int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO slots (venue_id, start_time, end_time, price_cents) VALUES ($1, $2, $3, $4) RETURNING id",
		venueID, start, start.Add(time.Hour), priceCents).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestSlotWithID inserts an available slot under a fixed id.
func CreateTestSlotWithID(t *testing.T, db DBLike, id, venueID int64, start time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"INSERT INTO slots (id, venue_id, start_time, end_time, price_cents) VALUES ($1, $2, $3, $4, 2500)",
		id, venueID, start, start.Add(time.Hour))
	require.NoError(t, err)
}

// ForceHold puts a slot on hold with a pending booking, bypassing the API.
// Used to stage lapsed holds.
func ForceHold(t *testing.T, db DBLike, slotID, userID int64, heldUntil time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, "UPDATE slots SET status = 'held', held_until = $2 WHERE id = $1", slotID, heldUntil)
	require.NoError(t, err)

	var bookingID int64
	err = db.QueryRow(ctx,
		"INSERT INTO bookings (slot_id, user_id, status) VALUES ($1, $2, 'pending') RETURNING id",
		slotID, userID).Scan(&bookingID)
	require.NoError(t, err)
	return bookingID
}

type SlotRow struct {
	Status    string
	HeldUntil *time.Time
}

func GetSlot(t *testing.T, db DBLike, slotID int64) SlotRow {
	t.Helper()

	var row SlotRow
	err := db.QueryRow(context.Background(),
		"SELECT status, held_until FROM slots WHERE id = $1", slotID).Scan(&row.Status, &row.HeldUntil)
	require.NoError(t, err)
	return row
}

func GetBookingStatus(t *testing.T, db DBLike, bookingID int64) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(),
		"SELECT status FROM bookings WHERE id = $1", bookingID).Scan(&status)
	require.NoError(t, err)
	return status
}

func CountRows(t *testing.T, db DBLike, query string, args ...any) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), query, args...).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except the migration ledger
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}

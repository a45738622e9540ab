//go:build e2e

package booking_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"playpal-booking/internal/handler/dto/request"
	"playpal-booking/internal/handler/dto/response"
	"playpal-booking/migrations"
	"playpal-booking/tests/common/builder"
	"playpal-booking/tests/common/dbtest"
	"playpal-booking/tests/common/httptest"
	"playpal-booking/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	holdURL       = "/api/bookings/hold"
	confirmURL    = "/api/bookings/confirm"
	bookingURL    = "/api/bookings/%d"
	slotURL       = "/api/slots/%d"
	venueSlotsURL = "/api/venues/%d/slots?date=%s"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func (s *BookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func slotStart() time.Time {
	return time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
}

func (s *BookingSuite) hold(t *testing.T, slotID, userID int64, headers map[string]string) (int, response.HoldResponse) {
	t.Helper()

	body := request.HoldRequest{SlotID: slotID, UserID: userID}
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL, body, headers)

	var res response.HoldResponse
	if w.Code == http.StatusCreated || w.Code == http.StatusOK {
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	}
	return w.Code, res
}

// =============================================================================
// TestHold
// =============================================================================

func (s *BookingSuite) TestHold() {
	s.Run("Normal case: available slot is held for ten minutes", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court A")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)

		before := time.Now()
		body := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.SlotID = slotID
		}).BuildHoldRequestDTO()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL, body, nil)

		require.Equal(t, http.StatusCreated, w.Code)
		var res response.HoldResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))

		assert.Equal(t, slotID, res.SlotID)
		assert.Positive(t, res.BookingID)
		assert.Equal(t, "Slot held! Please pay within 10 minutes.", res.Message)
		assert.WithinDuration(t, before.Add(10*time.Minute), res.HeldUntil, 5*time.Second)
		assert.Equal(t, fmt.Sprintf(bookingURL, res.BookingID), w.Header().Get("Location"))

		row := dbtest.GetSlot(t, s.DB, slotID)
		assert.Equal(t, "held", row.Status)
		require.NotNil(t, row.HeldUntil)
		assert.WithinDuration(t, res.HeldUntil, *row.HeldUntil, time.Millisecond)
		assert.Equal(t, "pending", dbtest.GetBookingStatus(t, s.DB, res.BookingID))
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB,
			"SELECT count(*) FROM notification_jobs WHERE topic = 'bookings.slot_held'"))
	})

	s.Run("Error case: unknown slot is unavailable", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL,
			request.HoldRequest{SlotID: 999, UserID: 7}, nil)

		httptest.AssertErrorCode(t, w, http.StatusBadRequest, "SLOT_UNAVAILABLE")
	})

	s.Run("Error case: invalid body is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL,
			map[string]any{"slot_id": 0, "user_id": 7}, nil)

		httptest.AssertErrorCode(t, w, http.StatusBadRequest, "INVALID_REQUEST")
	})

	s.Run("Concurrency: exactly one of many simultaneous holds wins", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court B")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)

		const contenders = 20
		codes := make([]int, contenders)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := range contenders {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL,
					request.HoldRequest{SlotID: slotID, UserID: int64(i + 1)}, nil)
				codes[i] = w.Code
			}(i)
		}
		close(start)
		wg.Wait()

		var won, lost int
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				won++
			case http.StatusBadRequest:
				lost++
			default:
				t.Errorf("unexpected status %d", code)
			}
		}
		assert.Equal(t, 1, won)
		assert.Equal(t, contenders-1, lost)
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB,
			"SELECT count(*) FROM bookings WHERE slot_id = $1", slotID))
	})
}

// =============================================================================
// TestBookingFlow - the end to end life of one slot
// =============================================================================

func (s *BookingSuite) TestBookingFlow() {
	s.Run("Hold, lose the race, confirm, stay booked", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court 42")
		dbtest.CreateTestSlotWithID(t, s.DB, 42, venueID, slotStart())

		codeA, heldA := s.hold(t, 42, 1, nil)
		require.Equal(t, http.StatusCreated, codeA)

		codeB, _ := s.hold(t, 42, 2, nil)
		assert.Equal(t, http.StatusBadRequest, codeB)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL,
			request.ConfirmRequest{BookingID: heldA.BookingID, SlotID: 42}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var confirmed response.ConfirmResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &confirmed))
		assert.Equal(t, "Booking confirmed successfully!", confirmed.Message)

		codeC, _ := s.hold(t, 42, 3, nil)
		assert.Equal(t, http.StatusBadRequest, codeC)

		row := dbtest.GetSlot(t, s.DB, 42)
		assert.Equal(t, "booked", row.Status)
		assert.Nil(t, row.HeldUntil)
		assert.Equal(t, "confirmed", dbtest.GetBookingStatus(t, s.DB, heldA.BookingID))

		dw := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(bookingURL, heldA.BookingID), nil, nil)
		require.Equal(t, http.StatusOK, dw.Code)
		var detail response.BookingResponse
		require.NoError(t, httptest.DecodeResponseBody(t, dw.Body, &detail))

		expected := &response.BookingResponse{
			ID:         heldA.BookingID,
			SlotID:     42,
			UserID:     1,
			Status:     "confirmed",
			VenueID:    venueID,
			PriceCents: 2500,
			SlotStatus: "booked",
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.BookingResponse{}, "SlotStart", "SlotEnd", "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, &detail, opts...); diff != "" {
			t.Errorf("Booking response mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("Lapsed hold is taken over by the next hold", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court 7")
		dbtest.CreateTestSlotWithID(t, s.DB, 7, venueID, slotStart())
		staleBooking := dbtest.ForceHold(t, s.DB, 7, 1, time.Now().Add(-time.Minute))

		code, held := s.hold(t, 7, 2, nil)
		require.Equal(t, http.StatusCreated, code)

		assert.Equal(t, "expired", dbtest.GetBookingStatus(t, s.DB, staleBooking))
		assert.Equal(t, "pending", dbtest.GetBookingStatus(t, s.DB, held.BookingID))
		assert.Equal(t, "held", dbtest.GetSlot(t, s.DB, 7).Status)
	})

	s.Run("Confirm after the hold lapsed is rejected", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court C")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)
		bookingID := dbtest.ForceHold(t, s.DB, slotID, 1, time.Now().Add(-time.Second))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL,
			request.ConfirmRequest{BookingID: bookingID, SlotID: slotID}, nil)

		httptest.AssertErrorCode(t, w, http.StatusConflict, "INVALID_STATE")
		assert.Equal(t, "held", dbtest.GetSlot(t, s.DB, slotID).Status)
		assert.Equal(t, "pending", dbtest.GetBookingStatus(t, s.DB, bookingID))
	})

	s.Run("Failed confirm leaves slot and booking untouched", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court D")
		slotA := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)
		slotB := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart().Add(time.Hour), 2500)

		_, heldA := s.hold(t, slotA, 1, nil)
		_, _ = s.hold(t, slotB, 2, nil)

		// booking for slot A presented against slot B
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL,
			request.ConfirmRequest{BookingID: heldA.BookingID, SlotID: slotB}, nil)

		httptest.AssertErrorCode(t, w, http.StatusNotFound, "BOOKING_NOT_FOUND")
		assert.Equal(t, "held", dbtest.GetSlot(t, s.DB, slotA).Status)
		assert.Equal(t, "held", dbtest.GetSlot(t, s.DB, slotB).Status)
		assert.Equal(t, "pending", dbtest.GetBookingStatus(t, s.DB, heldA.BookingID))
		assert.Zero(t, dbtest.CountRows(t, s.DB,
			"SELECT count(*) FROM notification_jobs WHERE topic = 'bookings.booking_confirmed'"))
	})

	s.Run("Second confirm of the same booking is rejected", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court E")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)
		_, held := s.hold(t, slotID, 1, nil)

		req := request.ConfirmRequest{BookingID: held.BookingID, SlotID: slotID}
		first := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL, req, nil)
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.PerformRequest(t, s.Router, http.MethodPost, confirmURL, req, nil)
		httptest.AssertErrorCode(t, second, http.StatusConflict, "INVALID_STATE")
	})
}

// =============================================================================
// TestIdempotency
// =============================================================================

func (s *BookingSuite) TestIdempotency() {
	s.Run("Replay returns the original booking", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court F")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}

		code, first := s.hold(t, slotID, 1, headers)
		require.Equal(t, http.StatusCreated, code)

		code, replay := s.hold(t, slotID, 1, headers)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, replay.Replayed)
		assert.Equal(t, first.BookingID, replay.BookingID)
		assert.Equal(t, "Slot already held by this request.", replay.Message)
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "SELECT count(*) FROM bookings WHERE slot_id = $1", slotID))
	})

	s.Run("Same key with a different body conflicts", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court G")
		slotA := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 2500)
		slotB := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart().Add(time.Hour), 2500)
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}

		code, _ := s.hold(t, slotA, 1, headers)
		require.Equal(t, http.StatusCreated, code)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL,
			request.HoldRequest{SlotID: slotB, UserID: 1}, headers)
		httptest.AssertErrorCode(t, w, http.StatusConflict, "IDEMPOTENCY_CONFLICT")
		assert.Equal(t, "available", dbtest.GetSlot(t, s.DB, slotB).Status)
	})

	s.Run("Malformed key is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, holdURL,
			request.HoldRequest{SlotID: 1, UserID: 1}, map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorCode(t, w, http.StatusBadRequest, "INVALID_REQUEST")
	})
}

// =============================================================================
// TestReclaim
// =============================================================================

func (s *BookingSuite) TestReclaim() {
	s.Run("Sweep frees every lapsed hold and leaves live ones", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court H")

		var lapsed []int64
		for i := range 3 {
			slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart().Add(time.Duration(i)*time.Hour), 2500)
			lapsed = append(lapsed, dbtest.ForceHold(t, s.DB, slotID, int64(i+1), time.Now().Add(-time.Minute)))
		}
		liveSlot := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart().Add(5*time.Hour), 2500)
		_, live := s.hold(t, liveSlot, 9, nil)

		result, err := s.Reclaimer.SweepOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, result.ReclaimedSlots)

		for _, bookingID := range lapsed {
			assert.Equal(t, "expired", dbtest.GetBookingStatus(t, s.DB, bookingID))
		}
		assert.Equal(t, 3, dbtest.CountRows(t, s.DB,
			"SELECT count(*) FROM slots WHERE status = 'available' AND held_until IS NULL"))
		assert.Equal(t, "held", dbtest.GetSlot(t, s.DB, liveSlot).Status)
		assert.Equal(t, "pending", dbtest.GetBookingStatus(t, s.DB, live.BookingID))

		again, err := s.Commands.ReclaimExpired(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Zero(t, again)
	})
}

// =============================================================================
// TestSlotQueries
// =============================================================================

func (s *BookingSuite) TestSlotQueries() {
	s.Run("Held slot reports its countdown", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court I")
		slotID := dbtest.CreateTestSlot(t, s.DB, venueID, slotStart(), 3000)
		_, _ = s.hold(t, slotID, 1, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(slotURL, slotID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res response.SlotResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		assert.Equal(t, "held", res.Status)
		assert.InDelta(t, 600, res.HoldRemainingSeconds, 5)
		assert.False(t, res.Reclaimable)
	})

	s.Run("Venue listing is scoped to one day", func() {
		t := s.T()
		venueID := dbtest.CreateTestVenue(t, s.DB, "Court J")
		day := slotStart().Truncate(24 * time.Hour)
		first := dbtest.CreateTestSlot(t, s.DB, venueID, day.Add(9*time.Hour), 2500)
		second := dbtest.CreateTestSlot(t, s.DB, venueID, day.Add(18*time.Hour), 2500)
		dbtest.CreateTestSlot(t, s.DB, venueID, day.Add(33*time.Hour), 2500)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf(venueSlotsURL, venueID, day.Format("2006-01-02")), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res []response.SlotResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		require.Len(t, res, 2)
		assert.Equal(t, []int64{first, second}, []int64{res[0].ID, res[1].ID})
	})

	s.Run("Unknown slot is not found", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/slots/"+strconv.Itoa(12345), nil, nil)
		httptest.AssertErrorCode(t, w, http.StatusNotFound, "SLOT_NOT_FOUND")
	})
}

// =============================================================================
// TestMigrations
// =============================================================================

func (s *BookingSuite) TestMigrations() {
	s.Run("Applying twice is a no-op", func() {
		t := s.T()

		require.NoError(t, migrations.Apply(context.Background(), s.DB))

		names, err := migrations.Names()
		require.NoError(t, err)
		assert.Equal(t, len(names), dbtest.CountRows(t, s.DB, "SELECT count(*) FROM schema_migrations"))
	})
}

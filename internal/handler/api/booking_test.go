//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"playpal-booking/internal/handler/api"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/pkg/errs"
	"playpal-booking/internal/usecase/commands"
	"playpal-booking/tests/common/builder"
	"playpal-booking/tests/common/httptest"
	"playpal-booking/tests/common/testutil"
	commandsmock "playpal-booking/tests/mock/commands"
	queriesmock "playpal-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries, config.NewTestConfig().Reservation)

	s.router.POST("/bookings/hold", s.handler.Hold)
	s.router.POST("/bookings/confirm", s.handler.Confirm)
	s.router.GET("/bookings/:id", s.handler.Get)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type testCaseBooking struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestHold
// ================================================================================

func (s *BookingHandlerTestSuite) TestHold() {
	url := "/bookings/hold"
	heldUntil := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)

	reqBody := builder.NewBookingBuilder().BuildHoldRequestDTO()
	result := &commands.HoldResult{BookingID: 100, SlotID: 42, UserID: 7, HeldUntil: heldUntil}

	s.Run("success: returns 201 Created with the hold deadline", func() {
		s.mockCommands.EXPECT().Hold(gomock.Any(), commands.HoldInput{SlotID: 42, UserID: 7}).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(float64(100), body["booking_id"])
		s.Equal(float64(42), body["slot_id"])
		s.Equal("2025-06-01T12:10:00Z", body["held_until"])
		s.Equal("Slot held! Please pay within 10 minutes.", body["message"])
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/bookings/100"})
	})

	s.Run("success: forwards the idempotency key and returns 200 on replay", func() {
		key := uuid.New()
		replayed := *result
		replayed.Replayed = true
		s.mockCommands.EXPECT().Hold(gomock.Any(), commands.HoldInput{SlotID: 42, UserID: 7, IdempotencyKey: &key}).
			Return(&replayed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": key.String()})

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(true, body["replayed"])
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []testCaseBooking{
			{name: "missing slot_id", mutate: testutil.Field("slot_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing user_id", mutate: testutil.Field("user_id", nil), expectCode: http.StatusBadRequest},
			{name: "zero slot_id", mutate: testutil.Field("slot_id", 0), expectCode: http.StatusBadRequest},
			{name: "negative user_id", mutate: testutil.Field("user_id", -1), expectCode: http.StatusBadRequest},
			{name: "string slot_id", mutate: testutil.Field("slot_id", "42"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, nil)
				httptest.AssertErrorCode(s.T(), rec, tc.expectCode, "INVALID_REQUEST")
			})
		}
	})

	s.Run("error: 400 Bad Request on malformed idempotency key", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid Idempotency-Key")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedCode   string
			expectedMsg    string
		}{
			{
				name:           "slot unavailable",
				commandsError:  errs.ErrSlotUnavailable,
				expectedStatus: http.StatusBadRequest,
				expectedCode:   "SLOT_UNAVAILABLE",
				expectedMsg:    "slot no longer available",
			},
			{
				name:           "idempotency conflict",
				commandsError:  errs.ErrIdempotencyConflict,
				expectedStatus: http.StatusConflict,
				expectedCode:   "IDEMPOTENCY_CONFLICT",
			},
			{
				name:           "store unavailable keeps the cause out of the body",
				commandsError:  errs.Mark(errs.New("dial tcp: connection refused"), errs.ErrStoreUnavailable),
				expectedStatus: http.StatusServiceUnavailable,
				expectedCode:   "STORE_UNAVAILABLE",
			},
			{
				name:           "unexpected error",
				commandsError:  errs.New("boom"),
				expectedStatus: http.StatusInternalServerError,
				expectedCode:   "INTERNAL",
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Hold(gomock.Any(), gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, nil)
				httptest.AssertErrorCode(s.T(), rec, tc.expectedStatus, tc.expectedCode)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
				s.NotContains(rec.Body.String(), "connection refused")
			})
		}
	})
}

// ================================================================================
// TestConfirm
// ================================================================================

func (s *BookingHandlerTestSuite) TestConfirm() {
	url := "/bookings/confirm"
	reqBody := builder.NewBookingBuilder().BuildConfirmRequestDTO()
	confirmedAt := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)

	s.Run("success: returns 200 with confirmation message", func() {
		s.mockCommands.EXPECT().Confirm(gomock.Any(), commands.ConfirmInput{BookingID: 100, SlotID: 42}).
			Return(&commands.ConfirmResult{BookingID: 100, SlotID: 42, ConfirmedAt: confirmedAt}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("Booking confirmed successfully!", body["message"])
	})

	s.Run("error: 400 Bad Request on missing booking_id", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("booking_id", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedCode   string
		}{
			{"booking not found", errs.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
			{"hold lapsed", errs.Mark(errs.New("hold has lapsed"), errs.ErrInvalidState), http.StatusConflict, "INVALID_STATE"},
			{"store unavailable", errs.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Confirm(gomock.Any(), gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, nil)
				httptest.AssertErrorCode(s.T(), rec, tc.expectedStatus, tc.expectedCode)
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *BookingHandlerTestSuite) TestGet() {
	heldUntil := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	view := builder.NewBookingBuilder().BuildView(builder.NewSlotBuilder().Held(heldUntil))
	view.HoldRemainingSeconds = 300

	s.Run("success: returns booking with slot details", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), int64(100)).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/100", nil, nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("pending", body["status"])
		s.Equal("held", body["slot_status"])
		s.Equal(float64(300), body["hold_remaining_seconds"])
	})

	s.Run("error: 400 Bad Request on non-numeric id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/abc", nil, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "INVALID_REQUEST")
	})

	s.Run("error: 404 Not Found", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), int64(999)).Return(nil, errs.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/999", nil, nil)
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "BOOKING_NOT_FOUND")
	})
}

package api

import (
	"net/http"
	"strconv"

	reqdto "playpal-booking/internal/handler/dto/request"
	resdto "playpal-booking/internal/handler/dto/response"
	"playpal-booking/internal/handler/httperr"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/usecase/commands"
	"playpal-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

type BookingHandler struct {
	cmds commands.ReservationCommands
	q    queries.BookingQueries
	cfg  config.ReservationConfig
}

func NewBookingHandler(cmds commands.ReservationCommands, q queries.BookingQueries, cfg config.ReservationConfig) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q, cfg: cfg}
}

// @Summary Hold slot
// @Description Place a time-limited hold on an available slot and create a pending booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Param request body reqdto.HoldRequest true "Hold request"
// @Success 201 {object} resdto.HoldResponse
// @Success 200 {object} resdto.HoldResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /bookings/hold [post]
func (h *BookingHandler) Hold(c *gin.Context) {
	var req reqdto.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request", nil)
		return
	}

	var key *uuid.UUID
	if raw := c.GetHeader(idempotencyKeyHeader); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid Idempotency-Key", nil)
			return
		}
		key = &parsed
	}

	result, err := h.cmds.Hold(c.Request.Context(), req.ToInput(key))
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.Header("Location", "/api/bookings/"+strconv.FormatInt(result.BookingID, 10))
	c.JSON(status, resdto.FromHoldResult(result, h.cfg.HoldDuration))
}

// @Summary Confirm booking
// @Description Confirm a pending booking whose hold has not lapsed
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body reqdto.ConfirmRequest true "Confirm request"
// @Success 200 {object} resdto.ConfirmResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /bookings/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	var req reqdto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid request", nil)
		return
	}

	result, err := h.cmds.Confirm(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromConfirmResult(result))
}

// @Summary Get booking
// @Description Get a booking with its slot details
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID(err), "INVALID_REQUEST", "Invalid id", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	res, err := resdto.FromBookingView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

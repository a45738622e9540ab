package api

import (
	"net/http"
	"strconv"

	reqdto "playpal-booking/internal/handler/dto/request"
	resdto "playpal-booking/internal/handler/dto/response"
	"playpal-booking/internal/handler/httperr"
	"playpal-booking/internal/pkg/errs"
	"playpal-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	q queries.SlotQueries
}

func NewSlotHandler(q queries.SlotQueries) *SlotHandler {
	return &SlotHandler{q: q}
}

// @Summary Get slot
// @Description Get a slot including the remaining hold time
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /slots/{id} [get]
func (h *SlotHandler) Get(c *gin.Context) {
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
	res, err := resdto.FromSlotView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary List venue slots
// @Description List the slots of a venue starting on the given UTC day
// @Tags slots
// @Produce json
// @Param venueId path int true "Venue ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {array} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /venues/{venueId}/slots [get]
func (h *SlotHandler) ListByVenue(c *gin.Context) {
	venueID, err := strconv.ParseInt(c.Param("venueId"), 10, 64)
	if err != nil || venueID <= 0 {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID(err), "INVALID_REQUEST", "Invalid venue id", nil)
		return
	}

	var query reqdto.ListSlotsQuery
	if bindErr := c.ShouldBindQuery(&query); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "INVALID_REQUEST", "Invalid date", nil)
		return
	}
	date, err := query.ParseDate()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "Invalid date", nil)
		return
	}

	views, err := h.q.ListByVenueAndDate(c.Request.Context(), venueID, date)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	res, err := resdto.FromSlotViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func errInvalidID(err error) error {
	if err != nil {
		return errs.Wrap(err, "parse id")
	}
	return errs.ErrInvalidRequest
}

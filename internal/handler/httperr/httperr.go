package httperr

import (
	"net/http"

	"playpal-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Detail  any    `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{
		Status:  status,
		Message: msg,
		Code:    code,
		Detail:  detail,
	}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	target error
	status int
	code   string
}

// Ordered: a store failure that also carries a domain mark reports the domain outcome.
var mappings = []mapping{
	{errs.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{errs.ErrSlotUnavailable, http.StatusBadRequest, "SLOT_UNAVAILABLE"},
	{errs.ErrSlotNotFound, http.StatusNotFound, "SLOT_NOT_FOUND"},
	{errs.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{errs.ErrInvalidState, http.StatusConflict, "INVALID_STATE"},
	{errs.ErrIdempotencyConflict, http.StatusConflict, "IDEMPOTENCY_CONFLICT"},
	{errs.ErrIdempotencyInProgress, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS"},
	{errs.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
}

// AbortWithDomainError maps a usecase error to its HTTP status. The message is
// the sentinel's text so internals never leak into the response.
func AbortWithDomainError(c *gin.Context, err error) {
	for _, m := range mappings {
		if errs.Is(err, m.target) {
			AbortWithError(c, m.status, err, m.code, m.target.Error(), nil)
			return
		}
	}
	AbortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "Internal server error", nil)
}

package response

import (
	"fmt"
	"math"
	"time"

	"playpal-booking/internal/usecase/commands"
	"playpal-booking/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

const (
	confirmedMessage = "Booking confirmed successfully!"
	replayedMessage  = "Slot already held by this request."
)

type HoldResponse struct {
	BookingID int64     `json:"booking_id"`
	SlotID    int64     `json:"slot_id"`
	HeldUntil time.Time `json:"held_until"`
	Message   string    `json:"message"`
	Replayed  bool      `json:"replayed,omitempty"`
}

func FromHoldResult(r *commands.HoldResult, holdDuration time.Duration) *HoldResponse {
	msg := fmt.Sprintf("Slot held! Please pay within %d minutes.", int(math.Round(holdDuration.Minutes())))
	if r.Replayed {
		msg = replayedMessage
	}
	return &HoldResponse{
		BookingID: r.BookingID,
		SlotID:    r.SlotID,
		HeldUntil: r.HeldUntil.UTC(),
		Message:   msg,
		Replayed:  r.Replayed,
	}
}

type ConfirmResponse struct {
	BookingID   int64     `json:"booking_id"`
	SlotID      int64     `json:"slot_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
	Message     string    `json:"message"`
}

func FromConfirmResult(r *commands.ConfirmResult) *ConfirmResponse {
	return &ConfirmResponse{
		BookingID:   r.BookingID,
		SlotID:      r.SlotID,
		ConfirmedAt: r.ConfirmedAt.UTC(),
		Message:     confirmedMessage,
	}
}

type BookingResponse struct {
	ID                   int64      `json:"id"`
	SlotID               int64      `json:"slot_id"`
	UserID               int64      `json:"user_id"`
	Status               string     `json:"status"`
	VenueID              int64      `json:"venue_id"`
	SlotStart            time.Time  `json:"slot_start"`
	SlotEnd              time.Time  `json:"slot_end"`
	PriceCents           int64      `json:"price_cents"`
	SlotStatus           string     `json:"slot_status"`
	SlotHeldUntil        *time.Time `json:"slot_held_until,omitempty"`
	HoldRemainingSeconds int64      `json:"hold_remaining_seconds"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	var res BookingResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

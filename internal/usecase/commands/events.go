package commands

import (
	"time"

	"playpal-booking/internal/domain/booking"
)

// Outbox rows written by the reservation engine. The relay publishes the
// payload with Topic() as routing key.
const (
	JobKindBookingEvent = "booking_event"

	EventSlotHeld         = "slot_held"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingExpired   = "booking_expired"

	ExpiryReasonSuperseded = "superseded"
	ExpiryReasonHoldLapsed = "hold_lapsed"
)

type BookingEvent struct {
	Type       string     `json:"type"`
	BookingID  int64      `json:"booking_id"`
	SlotID     int64      `json:"slot_id"`
	UserID     int64      `json:"user_id,omitempty"`
	HeldUntil  *time.Time `json:"held_until,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func (e BookingEvent) Topic() string {
	return "bookings." + e.Type
}

func slotHeldEvent(b *booking.Booking, heldUntil, now time.Time) BookingEvent {
	return BookingEvent{
		Type:       EventSlotHeld,
		BookingID:  b.ID(),
		SlotID:     b.SlotID(),
		UserID:     b.UserID(),
		HeldUntil:  &heldUntil,
		OccurredAt: now,
	}
}

func bookingConfirmedEvent(bookingID, slotID int64, now time.Time) BookingEvent {
	return BookingEvent{
		Type:       EventBookingConfirmed,
		BookingID:  bookingID,
		SlotID:     slotID,
		OccurredAt: now,
	}
}

func bookingExpiredEvent(b *booking.Booking, reason string, now time.Time) BookingEvent {
	return BookingEvent{
		Type:       EventBookingExpired,
		BookingID:  b.ID(),
		SlotID:     b.SlotID(),
		UserID:     b.UserID(),
		Reason:     reason,
		OccurredAt: now,
	}
}

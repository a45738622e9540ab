package booking

import (
	"errors"
	"time"
)

var (
	ErrInvalidSlotID = errors.New("slot id must be positive")
	ErrInvalidUserID = errors.New("user id must be positive")
	ErrInvalidStatus = errors.New("invalid booking status")
	ErrForeignSlot   = errors.New("booking does not reference this slot")
	ErrNotPending    = errors.New("booking is not pending")
)

type Booking struct {
	id        int64
	slotID    int64
	userID    int64
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewPendingBooking builds the booking recorded alongside a successful hold.
// The id is assigned by the store.
func NewPendingBooking(slotID, userID int64) (*Booking, error) {
	if slotID <= 0 {
		return nil, ErrInvalidSlotID
	}
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return &Booking{
		slotID: slotID,
		userID: userID,
		status: StatusPending,
	}, nil
}

func ReconstructBooking(
	id, slotID, userID int64,
	status Status,
	createdAt, updatedAt time.Time,
) (*Booking, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Booking{
		id:        id,
		slotID:    slotID,
		userID:    userID,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// CheckConfirmableFor reports why confirming this booking against slotID would fail.
func (b *Booking) CheckConfirmableFor(slotID int64) error {
	if b.slotID != slotID {
		return ErrForeignSlot
	}
	if b.status != StatusPending {
		return ErrNotPending
	}
	return nil
}

func (b *Booking) ID() int64            { return b.id }
func (b *Booking) SlotID() int64        { return b.slotID }
func (b *Booking) UserID() int64        { return b.userID }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

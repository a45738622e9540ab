package slot

import (
	"errors"
	"time"
)

var (
	ErrInvalidHoldDuration = errors.New("hold duration must be positive")
	ErrInvalidStatus       = errors.New("invalid slot status")
	ErrMissingDeadline     = errors.New("held slot requires a hold deadline")
	ErrNotHeld             = errors.New("slot is not held")
	ErrHoldLapsed          = errors.New("hold has lapsed")
)

// Slot is a bookable venue time range. Status transitions are applied by the
// store as conditional updates; the entity answers questions about a loaded row.
type Slot struct {
	id        int64
	venueID   int64
	timeRange TimeRange
	price     Money
	status    Status
	heldUntil *time.Time
	createdAt time.Time
	updatedAt time.Time
}

func ReconstructSlot(
	id, venueID int64,
	timeRange TimeRange,
	price Money,
	status Status,
	heldUntil *time.Time,
	createdAt, updatedAt time.Time,
) (*Slot, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if status == StatusHeld && heldUntil == nil {
		return nil, ErrMissingDeadline
	}
	if status != StatusHeld {
		heldUntil = nil
	}
	return &Slot{
		id:        id,
		venueID:   venueID,
		timeRange: timeRange,
		price:     price,
		status:    status,
		heldUntil: heldUntil,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// HoldDeadline is the held_until value written together with status=held.
func HoldDeadline(now time.Time, holdDuration time.Duration) (time.Time, error) {
	if holdDuration <= 0 {
		return time.Time{}, ErrInvalidHoldDuration
	}
	return now.Add(holdDuration), nil
}

// IsHoldLapsedAt mirrors the reclaim predicate: held with a deadline
// strictly before now.
func (s *Slot) IsHoldLapsedAt(now time.Time) bool {
	return s.status == StatusHeld && s.heldUntil.Before(now)
}

// HoldRemaining is the countdown shown to the paying user. Zero unless held.
func (s *Slot) HoldRemaining(now time.Time) time.Duration {
	if s.status != StatusHeld {
		return 0
	}
	remaining := s.heldUntil.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CheckConfirmableAt reports why a confirm against this slot would fail.
// A hold whose deadline equals now is still valid.
func (s *Slot) CheckConfirmableAt(now time.Time) error {
	if s.status != StatusHeld {
		return ErrNotHeld
	}
	if s.heldUntil.Before(now) {
		return ErrHoldLapsed
	}
	return nil
}

func (s *Slot) ID() int64             { return s.id }
func (s *Slot) VenueID() int64        { return s.venueID }
func (s *Slot) TimeRange() TimeRange  { return s.timeRange }
func (s *Slot) Price() Money          { return s.price }
func (s *Slot) Status() Status        { return s.status }
func (s *Slot) HeldUntil() *time.Time { return s.heldUntil }
func (s *Slot) CreatedAt() time.Time  { return s.createdAt }
func (s *Slot) UpdatedAt() time.Time  { return s.updatedAt }

package request

import (
	"playpal-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type HoldRequest struct {
	SlotID int64 `json:"slot_id" binding:"required,gt=0"`
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}

func (r *HoldRequest) ToInput(idempotencyKey *uuid.UUID) commands.HoldInput {
	return commands.HoldInput{
		SlotID:         r.SlotID,
		UserID:         r.UserID,
		IdempotencyKey: idempotencyKey,
	}
}

type ConfirmRequest struct {
	BookingID int64 `json:"booking_id" binding:"required,gt=0"`
	SlotID    int64 `json:"slot_id" binding:"required,gt=0"`
}

func (r *ConfirmRequest) ToInput() commands.ConfirmInput {
	return commands.ConfirmInput{
		BookingID: r.BookingID,
		SlotID:    r.SlotID,
	}
}

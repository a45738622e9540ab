package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"playpal-booking/internal/domain/booking"
	"playpal-booking/internal/domain/slot"
	"playpal-booking/internal/infra"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/pkg/errs"
	"playpal-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/commands/reservation_mock.go -package=commandsmock

const holdEndpoint = "POST /api/bookings/hold"

type HoldInput struct {
	SlotID         int64
	UserID         int64
	IdempotencyKey *uuid.UUID
}

type HoldResult struct {
	BookingID int64
	SlotID    int64
	UserID    int64
	HeldUntil time.Time
	Replayed  bool
}

type ConfirmInput struct {
	BookingID int64
	SlotID    int64
}

type ConfirmResult struct {
	BookingID   int64
	SlotID      int64
	ConfirmedAt time.Time
}

type ReservationCommands interface {
	Hold(ctx context.Context, in HoldInput) (*HoldResult, error)
	Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error)
	ReclaimExpired(ctx context.Context, now time.Time) (int, error)
	PurgeExpiredIdempotencyKeys(ctx context.Context, now time.Time) (int64, error)
}

type reservationUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.ReservationConfig
}

func NewReservationUseCase(uow shared.UnitOfWork, clk clock.Clock, cfg config.ReservationConfig) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg,
	}
}

// Hold moves the slot to held and records a pending booking in one transaction.
// The slot UPDATE is the only serialization point: a concurrent Hold blocks on
// the row lock and then fails the re-checked predicate.
func (uc *reservationUseCaseImpl) Hold(ctx context.Context, in HoldInput) (*HoldResult, error) {
	if in.SlotID <= 0 || in.UserID <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	now := uc.clock.Now()
	heldUntil, err := slot.HoldDeadline(now, uc.cfg.HoldDuration)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidRequest)
	}
	pending, err := booking.NewPendingBooking(in.SlotID, in.UserID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidRequest)
	}

	var result *HoldResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil

		if in.IdempotencyKey != nil {
			replay, err := uc.claimIdempotencyKey(ctx, tx, *in.IdempotencyKey, in, now)
			if err != nil {
				return err
			}
			if replay != nil {
				result = replay
				return nil
			}
		}

		held, err := tx.Slots().Hold(ctx, tx.DB(), in.SlotID, now, heldUntil)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrSlotUnavailable
			}
			return err
		}

		// A lapsed hold being taken over leaves its pending booking behind.
		superseded, err := tx.Bookings().ExpirePending(ctx, tx.DB(), []int64{held.ID()}, now)
		if err != nil {
			return err
		}

		created, err := tx.Bookings().Create(ctx, tx.DB(), pending, now)
		if err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.ErrSlotUnavailable
			}
			return err
		}

		for _, b := range superseded {
			if err := uc.enqueue(ctx, tx, bookingExpiredEvent(b, ExpiryReasonSuperseded, now)); err != nil {
				return err
			}
		}
		if err := uc.enqueue(ctx, tx, slotHeldEvent(created, heldUntil, now)); err != nil {
			return err
		}

		if in.IdempotencyKey != nil {
			if err := tx.Idempotency().Complete(ctx, tx.DB(), *in.IdempotencyKey, in.UserID, created.ID()); err != nil {
				return err
			}
		}

		result = &HoldResult{
			BookingID: created.ID(),
			SlotID:    held.ID(),
			UserID:    created.UserID(),
			HeldUntil: heldUntil,
		}
		return nil
	})
	if err != nil {
		return nil, uc.classify("hold", err, slog.Int64("slot_id", in.SlotID), slog.Int64("user_id", in.UserID))
	}

	return result, nil
}

// Confirm books the slot and confirms the booking, slot row first.
// Any mismatch rolls the whole transaction back.
func (uc *reservationUseCaseImpl) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	if in.BookingID <= 0 || in.SlotID <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	now := uc.clock.Now()

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Slots().Book(ctx, tx.DB(), in.SlotID, now); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return uc.diagnoseConfirm(ctx, tx, in, now)
			}
			return err
		}

		if err := tx.Bookings().Confirm(ctx, tx.DB(), in.BookingID, in.SlotID, now); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return uc.diagnoseConfirm(ctx, tx, in, now)
			}
			return err
		}

		return uc.enqueue(ctx, tx, bookingConfirmedEvent(in.BookingID, in.SlotID, now))
	})
	if err != nil {
		return nil, uc.classify("confirm", err, slog.Int64("booking_id", in.BookingID), slog.Int64("slot_id", in.SlotID))
	}

	return &ConfirmResult{
		BookingID:   in.BookingID,
		SlotID:      in.SlotID,
		ConfirmedAt: now,
	}, nil
}

// ReclaimExpired returns up to SweepBatchSize lapsed holds to available and
// expires their pending bookings.
func (uc *reservationUseCaseImpl) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	var reclaimed int
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reclaimed = 0

		ids, err := tx.Slots().ReclaimExpired(ctx, tx.DB(), now, uc.cfg.SweepBatchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		expired, err := tx.Bookings().ExpirePending(ctx, tx.DB(), ids, now)
		if err != nil {
			return err
		}
		for _, b := range expired {
			if err := uc.enqueue(ctx, tx, bookingExpiredEvent(b, ExpiryReasonHoldLapsed, now)); err != nil {
				return err
			}
		}

		reclaimed = len(ids)
		return nil
	})
	if err != nil {
		return 0, uc.classify("reclaim expired", err)
	}

	return reclaimed, nil
}

func (uc *reservationUseCaseImpl) PurgeExpiredIdempotencyKeys(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Idempotency().DeleteExpired(ctx, tx.DB(), now)
		purged = n
		return err
	})
	if err != nil {
		return 0, uc.classify("purge idempotency keys", err)
	}
	return purged, nil
}

// claimIdempotencyKey returns a non-nil result when the key already completed
// with an identical request.
func (uc *reservationUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key uuid.UUID,
	in HoldInput,
	now time.Time,
) (*HoldResult, error) {
	requestHash := calculateRequestHash(in)
	expiresAt := now.Add(uc.cfg.IdempotencyTTL)

	claimed, err := tx.Idempotency().TryClaim(ctx, tx.DB(), key, in.UserID, holdEndpoint, requestHash, now, expiresAt)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, nil
	}

	existing, err := tx.Reads().IdempotencyByKey(ctx, key, in.UserID)
	if err != nil {
		return nil, err
	}

	if existing.RequestHash != requestHash {
		return nil, errs.ErrIdempotencyConflict
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultBookingID == nil {
			return nil, errs.New("completed request missing result booking ID")
		}
		prior, err := tx.Reads().BookingByID(ctx, *existing.ResultBookingID)
		if err != nil {
			return nil, err
		}
		return &HoldResult{
			BookingID: prior.ID(),
			SlotID:    prior.SlotID(),
			UserID:    prior.UserID(),
			HeldUntil: prior.CreatedAt().Add(uc.cfg.HoldDuration),
			Replayed:  true,
		}, nil
	default:
		return nil, errs.ErrIdempotencyInProgress
	}
}

// diagnoseConfirm names the reason a conditional confirm step matched no row.
func (uc *reservationUseCaseImpl) diagnoseConfirm(ctx context.Context, tx shared.Tx, in ConfirmInput, now time.Time) error {
	b, err := tx.Reads().BookingByID(ctx, in.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrBookingNotFound
		}
		return err
	}

	if err := b.CheckConfirmableFor(in.SlotID); err != nil {
		if errs.Is(err, booking.ErrForeignSlot) {
			return errs.Mark(err, errs.ErrBookingNotFound)
		}
		return errs.Mark(err, errs.ErrInvalidState)
	}

	s, err := tx.Reads().SlotByID(ctx, in.SlotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrBookingNotFound
		}
		return err
	}
	if err := s.CheckConfirmableAt(now); err != nil {
		return errs.Mark(err, errs.ErrInvalidState)
	}

	return errs.ErrInvalidState
}

func (uc *reservationUseCaseImpl) enqueue(ctx context.Context, tx shared.Tx, event BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), JobKindBookingEvent, event.Topic(), payload, event.OccurredAt)
}

var expectedOutcomes = []error{
	errs.ErrInvalidRequest,
	errs.ErrSlotUnavailable,
	errs.ErrSlotNotFound,
	errs.ErrBookingNotFound,
	errs.ErrInvalidState,
	errs.ErrIdempotencyConflict,
	errs.ErrIdempotencyInProgress,
}

// classify passes expected outcomes through and marks everything else as a
// store failure. Transaction rollback has already undone partial writes.
func (uc *reservationUseCaseImpl) classify(op string, err error, attrs ...any) error {
	for _, expected := range expectedOutcomes {
		if errs.Is(err, expected) {
			return err
		}
	}
	if errs.Is(err, context.Canceled) || errs.Is(err, context.DeadlineExceeded) {
		return err
	}

	slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
	return errs.Mark(err, errs.ErrStoreUnavailable)
}

func calculateRequestHash(in HoldInput) string {
	data, _ := json.Marshal(struct {
		SlotID int64 `json:"slot_id"`
		UserID int64 `json:"user_id"`
	}{in.SlotID, in.UserID})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

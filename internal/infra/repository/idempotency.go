package repository

import (
	"context"
	"time"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

//go:generate mockgen -source=idempotency.go -destination=../../../tests/mock/repository/idempotency_mock.go -package=repositorymock

type IdempotencyWriteQueries interface {
	TryInsertIdempotencyKey(ctx context.Context, db querier.DBTX, arg querier.TryInsertIdempotencyKeyParams) (bool, error)
	CompleteIdempotencyKey(ctx context.Context, db querier.DBTX, arg querier.CompleteIdempotencyKeyParams) error
	DeleteExpiredIdempotencyKeys(ctx context.Context, db querier.DBTX, now pgtype.Timestamptz) (int64, error)
}

type IdempotencyRepository struct {
	queries IdempotencyWriteQueries
	db      querier.DBTX
}

func NewIdempotencyRepository(queries IdempotencyWriteQueries, db querier.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{
		queries: queries,
		db:      db,
	}
}

func (r *IdempotencyRepository) TryClaim(ctx context.Context, tx querier.DBTX, key uuid.UUID, userID int64, endpoint, requestHash string, now, expiresAt time.Time) (bool, error) {
	params := querier.TryInsertIdempotencyKeyParams{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		ExpiresAt:   pgconv.TimeToPgtype(expiresAt),
		Now:         pgconv.TimeToPgtype(now),
	}

	claimed, err := r.queries.TryInsertIdempotencyKey(ctx, tx, params)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}

	return claimed, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, tx querier.DBTX, key uuid.UUID, userID, bookingID int64) error {
	params := querier.CompleteIdempotencyKeyParams{
		Key:             key,
		UserID:          userID,
		ResultBookingID: pgconv.Int8ToPgtype(bookingID),
	}

	err := r.queries.CompleteIdempotencyKey(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}

	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx querier.DBTX, now time.Time) (int64, error) {
	count, err := r.queries.DeleteExpiredIdempotencyKeys(ctx, tx, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}

	return count, nil
}

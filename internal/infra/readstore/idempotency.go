package readstore

import (
	"context"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"
	"playpal-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=idempotency.go -destination=../../../tests/mock/readstore/idempotency_mock.go -package=readstoremock

type IdempotencyReadQueries interface {
	GetIdempotencyKey(ctx context.Context, db querier.DBTX, arg querier.GetIdempotencyKeyParams) (querier.IdempotencyKey, error)
}

type IdempotencyReadStore struct {
	queries IdempotencyReadQueries
}

func NewIdempotencyReadStore(queries IdempotencyReadQueries) *IdempotencyReadStore {
	return &IdempotencyReadStore{
		queries: queries,
	}
}

// Get returns the record even when expired; the claim path decides what an expired key means.
func (r *IdempotencyReadStore) Get(ctx context.Context, tx querier.DBTX, key uuid.UUID, userID int64) (*shared.IdempotencyRecord, error) {
	params := querier.GetIdempotencyKeyParams{
		Key:    key,
		UserID: userID,
	}

	row, err := r.queries.GetIdempotencyKey(ctx, tx, params)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	return &shared.IdempotencyRecord{
		Key:             row.Key,
		UserID:          row.UserID,
		Endpoint:        row.Endpoint,
		Status:          row.Status,
		RequestHash:     row.RequestHash,
		ResultBookingID: pgconv.Int8PtrFromPgtype(row.ResultBookingID),
		ExpiresAt:       pgconv.TimeFromPgtype(row.ExpiresAt),
	}, nil
}

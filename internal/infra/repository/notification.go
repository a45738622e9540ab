package repository

import (
	"context"
	"time"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/pkg/pgconv"
	"playpal-booking/internal/usecase/shared"
)

//go:generate mockgen -source=notification.go -destination=../../../tests/mock/repository/notification_mock.go -package=repositorymock

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db querier.DBTX, arg querier.CreateNotificationJobParams) error
	ListQueuedNotificationJobs(ctx context.Context, db querier.DBTX, arg querier.ListQueuedNotificationJobsParams) ([]querier.NotificationJob, error)
	UpdateNotificationJobStatus(ctx context.Context, db querier.DBTX, arg querier.UpdateNotificationJobStatusParams) error
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      querier.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, db querier.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx querier.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	params := querier.CreateNotificationJobParams{
		Kind:    kind,
		Topic:   topic,
		Payload: payload,
		RunAt:   pgconv.TimeToPgtype(runAt),
		Status:  shared.JobStatusQueued,
	}

	err := r.queries.CreateNotificationJob(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}

	return nil
}

// ListQueued locks the returned rows until tx ends; concurrent relays skip them.
func (r *NotificationRepository) ListQueued(ctx context.Context, tx querier.DBTX, now time.Time, limit int32) ([]*shared.NotificationJob, error) {
	params := querier.ListQueuedNotificationJobsParams{
		Now:   pgconv.TimeToPgtype(now),
		Limit: limit,
	}

	rows, err := r.queries.ListQueuedNotificationJobs(ctx, tx, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list queued notification jobs", err)
	}

	jobs := make([]*shared.NotificationJob, len(rows))
	for i, row := range rows {
		jobs[i] = &shared.NotificationJob{
			ID:       row.ID,
			Kind:     row.Kind,
			Topic:    row.Topic,
			Payload:  row.Payload,
			RunAt:    pgconv.TimeFromPgtype(row.RunAt),
			Attempts: row.Attempts,
		}
	}
	return jobs, nil
}

func (r *NotificationRepository) UpdateJobStatus(ctx context.Context, tx querier.DBTX, update shared.JobStatusUpdate) error {
	params := querier.UpdateNotificationJobStatusParams{
		ID:        update.ID,
		Status:    update.Status,
		LastError: pgconv.StringPtrToPgtype(update.LastError),
		RetryAt:   pgconv.TimePtrToPgtype(update.RetryAt),
	}

	err := r.queries.UpdateNotificationJobStatus(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}

	return nil
}

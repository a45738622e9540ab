// Package relay moves committed outbox rows from notification_jobs to the
// message broker. Delivery is at least once; consumers dedupe on message id.
package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/usecase/shared"
)

//go:generate mockgen -source=relay.go -destination=../../../tests/mock/relay/relay_mock.go -package=relaymock

type Message struct {
	ID         string
	Kind       string
	RoutingKey string
	Body       []byte
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

type Relay struct {
	uow       shared.UnitOfWork
	publisher Publisher
	clock     clock.Clock
	cfg       config.RelayConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRelay(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, cfg config.RelayConfig) *Relay {
	return &Relay{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// DrainOnce publishes one batch of due jobs. Rows stay locked for the
// duration of the batch so concurrent relays never publish the same job.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	var sent int
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		now := r.clock.Now()

		jobs, err := tx.Notifications().ListQueued(ctx, tx.DB(), now, r.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			update := r.publish(ctx, job, now)
			if err := tx.Notifications().UpdateJobStatus(ctx, tx.DB(), update); err != nil {
				return err
			}
			if update.Status == shared.JobStatusSent {
				sent++
			}
		}
		return nil
	})
	return sent, err
}

func (r *Relay) publish(ctx context.Context, job *shared.NotificationJob, now time.Time) shared.JobStatusUpdate {
	msg := Message{
		ID:         job.ID.String(),
		Kind:       job.Kind,
		RoutingKey: job.Topic,
		Body:       job.Payload,
	}

	err := r.publisher.Publish(ctx, msg)
	if err == nil {
		return shared.JobStatusUpdate{ID: job.ID, Status: shared.JobStatusSent}
	}

	lastError := err.Error()
	attempt := job.Attempts + 1
	if attempt >= r.cfg.MaxAttempts {
		slog.Error("outbox job failed permanently",
			"job_id", job.ID.String(),
			"topic", job.Topic,
			"attempts", attempt,
			"error", lastError)
		return shared.JobStatusUpdate{ID: job.ID, Status: shared.JobStatusFailed, LastError: &lastError}
	}

	retryAt := now.Add(retryDelay(attempt, r.cfg.Interval))
	slog.Warn("outbox publish failed, will retry",
		"job_id", job.ID.String(),
		"attempt", attempt,
		"retry_at", retryAt,
		"error", lastError)
	return shared.JobStatusUpdate{ID: job.ID, Status: shared.JobStatusQueued, LastError: &lastError, RetryAt: &retryAt}
}

func retryDelay(attempt int32, base time.Duration) time.Duration {
	const maxShift = 6
	shift := min(attempt-1, maxShift)
	return base * time.Duration(1<<shift)
}

// Run drains on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("outbox relay drain failed", "error", err.Error())
			}
		}
	}
}

func (r *Relay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	slog.Info("outbox relay started", "interval", r.cfg.Interval.String(), "batch_size", r.cfg.BatchSize)
}

// Stop halts the loop and closes the publisher.
func (r *Relay) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.publisher.Close()
}

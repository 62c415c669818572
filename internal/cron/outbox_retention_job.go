package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

const (
	outboxRetentionDays = 14
	dlqRetentionDays    = 30
)

// OutboxRetentionJobParams configure the published outbox event sweep.
type OutboxRetentionJobParams struct {
	Logger        *logger.Logger
	Repository    outboxRetentionRepo
	DLQRepository dlqRetentionRepo
	Retention     int
	DLQRetention  int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

type dlqRetentionRepo interface {
	DeleteFailedBefore(cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob builds the cron job that prunes outbox events the
// publisher already flushed to Pub/Sub, plus dead-letter rows old enough that
// nobody is going to replay them.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	dlqRetention := params.DLQRetention
	if dlqRetention <= 0 {
		dlqRetention = dlqRetentionDays
	}
	return &outboxRetentionJob{
		logg:         params.Logger,
		repo:         params.Repository,
		dlq:          params.DLQRepository,
		retention:    retention,
		dlqRetention: dlqRetention,
		now:          time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg         *logger.Logger
	repo         outboxRetentionRepo
	dlq          dlqRetentionRepo
	retention    int
	dlqRetention int
	now          func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.sweepPublished(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.sweepDLQ(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *outboxRetentionJob) sweepPublished(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeletePublishedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}

func (j *outboxRetentionJob) sweepDLQ(ctx context.Context) error {
	if j.dlq == nil {
		return nil
	}
	cutoff := j.now().UTC().Add(-time.Duration(j.dlqRetention) * 24 * time.Hour)
	deleted, err := j.dlq.DeleteFailedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("outbox dlq retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.dlqRetention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "outbox dlq retention cleanup complete")
	return nil
}

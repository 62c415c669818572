package cron

import (
	"context"
	"fmt"

	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

const expiryBatchSize = 200

// AssignmentExpiryJobParams configure the stale assignment sweep.
type AssignmentExpiryJobParams struct {
	Logger      *logger.Logger
	Assignments assignmentExpirer
	BatchSize   int
}

type assignmentExpirer interface {
	ExpireStale(ctx context.Context, batchSize int) (int, error)
}

// NewAssignmentExpiryJob builds the cron job that expires pending offers
// whose confirmation deadline has passed.
func NewAssignmentExpiryJob(params AssignmentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assignments == nil {
		return nil, fmt.Errorf("assignments service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = expiryBatchSize
	}
	return &assignmentExpiryJob{
		logg:        params.Logger,
		assignments: params.Assignments,
		batchSize:   batchSize,
	}, nil
}

type assignmentExpiryJob struct {
	logg        *logger.Logger
	assignments assignmentExpirer
	batchSize   int
}

func (j *assignmentExpiryJob) Name() string { return "assignment-expiry" }

func (j *assignmentExpiryJob) Run(ctx context.Context) error {
	total := 0
	for {
		expired, err := j.assignments.ExpireStale(ctx, j.batchSize)
		if err != nil {
			return fmt.Errorf("expire stale assignments: %w", err)
		}
		total += expired
		// A short batch means the backlog is drained.
		if expired < j.batchSize {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"expired": total})
	j.logg.Info(logCtx, "assignment expiry sweep complete")
	return nil
}

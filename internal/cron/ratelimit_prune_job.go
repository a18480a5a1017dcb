package cron

import (
	"context"
	"fmt"

	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// pruner is the slice of the rate limiter the job needs.
type pruner interface {
	Prune(ctx context.Context) (int, error)
}

// RateLimitPruneJobParams configure the throttle file cleanup job.
type RateLimitPruneJobParams struct {
	Logger  *logger.Logger
	Limiter pruner
}

// NewRateLimitPruneJob drops expired timestamps from the throttle file so it
// does not accumulate one key per historical visitor.
func NewRateLimitPruneJob(params RateLimitPruneJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Limiter == nil {
		return nil, fmt.Errorf("limiter required")
	}
	return &rateLimitPruneJob{logg: params.Logger, limiter: params.Limiter}, nil
}

type rateLimitPruneJob struct {
	logg    *logger.Logger
	limiter pruner
}

func (j *rateLimitPruneJob) Name() string { return "ratelimit-prune" }

func (j *rateLimitPruneJob) Run(ctx context.Context) error {
	removed, err := j.limiter.Prune(ctx)
	if err != nil {
		return fmt.Errorf("prune rate limit file: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "entries_removed", removed), "rate limit prune complete")
	return nil
}

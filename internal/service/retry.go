package service

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// readPolicy retries idempotent store reads with exponential backoff.
// Writes never go through it.
type readPolicy struct {
	retries uint64
	base    time.Duration
	logger  *zap.Logger
}

func (p readPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	base := p.base
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	b := retry.WithMaxRetries(p.retries, retry.NewExponential(base))

	var attempt uint64
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			if attempt <= p.retries {
				p.logger.Warn("Store read failed, retrying", zap.Uint64("attempt", attempt), zap.Error(err))
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}

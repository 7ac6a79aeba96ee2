package genai

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// RetryPolicy bounds the provider-call retry loop: up to MaxAttempts total
// attempts, waiting BaseDelay*2^(attempt-1) between them. Only transient
// failure kinds (timeout, network, server error) are retried.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
}

// DefaultRetryPolicy allows 3 attempts with 1s then 2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs op under the policy. Non-retryable failures and exhausted budgets
// surface the last error unchanged.
func (p RetryPolicy) Do(ctx context.Context, logger zerolog.Logger, op func() error) error {
	return retry.Do(op,
		retry.Context(ctx),
		retry.Attempts(p.MaxAttempts),
		retry.Delay(p.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			pe, ok := AsProviderError(err)
			return ok && pe.Retryable()
		}),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn().
				Err(err).
				Uint("attempt", attempt+1).
				Msg("generation attempt failed, retrying")
		}),
	)
}

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultMaxRetries = 2 // attempts = retries + 1
	defaultBackoff    = 100 * time.Millisecond
)

// Executor sequences a call through its circuit breaker with a bounded retry
// policy. Breaker state is shared by every caller using the same Executor.
type Executor struct {
	breaker    *gobreaker.CircuitBreaker[any]
	maxRetries uint64
	backoff    time.Duration
	log        zerolog.Logger
}

// NewExecutor builds an Executor around the given breaker. maxRetries <= 0
// and backoff <= 0 fall back to defaults.
func NewExecutor(breaker *gobreaker.CircuitBreaker[any], maxRetries int, backoff time.Duration, log zerolog.Logger) *Executor {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Executor{
		breaker:    breaker,
		maxRetries: uint64(maxRetries),
		backoff:    backoff,
		log:        log,
	}
}

// Execute runs fn through the executor's breaker, retrying transient
// failures up to the configured attempt budget. Business errors and an open
// breaker end the attempt loop immediately.
func Execute[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, error) {
	var result T

	err := retry.Do(ctx, retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.backoff)), func(ctx context.Context) error {
		v, err := e.breaker.Execute(func() (any, error) {
			return fn(ctx)
		})
		if err != nil {
			if retryable(err) {
				e.log.Debug().Err(err).Str("operation", op).Msg("transient failure, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		if v != nil {
			result = v.(T)
		}
		return nil
	})
	return result, err
}

// Unavailable reports whether err means the backend could not be reached at
// all: the breaker short-circuited the call or retries were exhausted.
func Unavailable(err error) bool {
	return err != nil && !isBusinessError(err)
}

// retryable reports whether another attempt could help. Calls rejected by an
// open or saturated breaker are not retried; neither are business outcomes.
func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return !isBusinessError(err)
}

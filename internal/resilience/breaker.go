// Package resilience wraps repository and downstream calls with a named
// circuit breaker and a bounded retry policy. Breakers are process-wide per
// backend name and shared by all concurrent callers.
package resilience

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/blogforge/content-api/internal/api/metrics"
	"github.com/blogforge/content-api/internal/core/domain"
)

// BreakerConfig tunes a circuit breaker instance.
type BreakerConfig struct {
	// FailureRatio is the failure rate over the sliding window that trips
	// the breaker from closed to open.
	FailureRatio float64
	// MinRequests is the minimum number of calls in the window before the
	// ratio is evaluated.
	MinRequests uint32
	// Interval is the sliding window length in the closed state.
	Interval time.Duration
	// Timeout is the cool-down before an open breaker admits trial calls.
	Timeout time.Duration
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
}

// NewBreaker builds a named circuit breaker. Business outcomes (not found,
// conflicts, validation failures) do not count as backend failures.
func NewBreaker(name string, cfg BreakerConfig, log zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isBusinessError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// isBusinessError reports whether err represents an expected domain outcome
// rather than a backend fault.
func isBusinessError(err error) bool {
	if _, ok := domain.AsValidationError(err); ok {
		return true
	}
	return errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrPostNotFound) ||
		errors.Is(err, domain.ErrUsernameTaken) ||
		errors.Is(err, domain.ErrEmailTaken) ||
		errors.Is(err, domain.ErrInvalidCredentials)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}

// Package gateway aggregates data from two downstream services into a single
// combined result. Every downstream call carries its own timeout, circuit
// breaker, and rate limiter; failures degrade the result instead of failing
// the request.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/blogforge/content-api/internal/api/metrics"
	"github.com/blogforge/content-api/internal/core/ports"
	"github.com/blogforge/content-api/internal/resilience"
)

const (
	downstreamA = "service-a"
	downstreamB = "service-b"
)

var errRateLimited = errors.New("rate limit exceeded")

// ServiceResponse is the payload shape both downstream services return.
type ServiceResponse struct {
	Data string `json:"data"`
}

// CombinedData is the aggregate result. A nil payload field plus an entry in
// Errors marks a downstream that could not be reached; the result itself is
// always delivered as a success.
type CombinedData struct {
	ServiceAData *string  `json:"serviceAData"`
	ServiceBData *string  `json:"serviceBData"`
	Errors       []string `json:"errors,omitempty"`
}

type downstream struct {
	name    string
	baseURL string
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
}

// Config tunes the gateway's downstream calls.
type Config struct {
	ServiceAURL string
	ServiceBURL string
	// Timeout bounds each individual downstream call.
	Timeout time.Duration
	// RatePerSec and RateBurst configure the per-downstream token bucket.
	RatePerSec float64
	RateBurst  int
	Breaker    resilience.BreakerConfig
}

// Gateway is the fan-out/fan-in client for the combined-data query.
type Gateway struct {
	client   *http.Client
	tokens   ports.TokenService
	serviceA downstream
	serviceB downstream
	// combined guards the aggregation as a whole: when it is open the
	// fan-out is skipped entirely and a degraded result returned.
	combined *gobreaker.CircuitBreaker[any]
	timeout  time.Duration
	log      zerolog.Logger
}

func New(cfg Config, tokens ports.TokenService, log zerolog.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	mk := func(name, baseURL string) downstream {
		return downstream{
			name:    name,
			baseURL: baseURL,
			breaker: resilience.NewBreaker(name, cfg.Breaker, log),
			limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
		}
	}
	return &Gateway{
		client:   &http.Client{Timeout: cfg.Timeout},
		tokens:   tokens,
		serviceA: mk(downstreamA, cfg.ServiceAURL),
		serviceB: mk(downstreamB, cfg.ServiceBURL),
		combined: resilience.NewBreaker("external", cfg.Breaker, log),
		timeout:  cfg.Timeout,
		log:      log,
	}
}

// GetCombinedData fans out to both downstreams concurrently and composes
// their payloads. The token is validated before any network call; an invalid
// token fails fast into a degraded result. Both calls always run to
// completion or timeout independently.
func (g *Gateway) GetCombinedData(ctx context.Context, id, token string) *CombinedData {
	if token == "" {
		return &CombinedData{Errors: []string{"authorization token is missing or empty"}}
	}
	if _, err := g.tokens.Validate(token); err != nil {
		return &CombinedData{Errors: []string{fmt.Sprintf("token rejected: %v", err)}}
	}

	result, err := g.combined.Execute(func() (any, error) {
		type outcome struct {
			data string
			err  error
		}
		chA := make(chan outcome, 1)
		chB := make(chan outcome, 1)

		go func() {
			data, err := g.call(ctx, g.serviceA, id, token)
			chA <- outcome{data, err}
		}()
		go func() {
			data, err := g.call(ctx, g.serviceB, id, token)
			chB <- outcome{data, err}
		}()

		resA, resB := <-chA, <-chB

		combined := &CombinedData{}
		if resA.err != nil {
			combined.Errors = append(combined.Errors, fmt.Sprintf("%s: %v", downstreamA, resA.err))
		} else {
			combined.ServiceAData = &resA.data
		}
		if resB.err != nil {
			combined.Errors = append(combined.Errors, fmt.Sprintf("%s: %v", downstreamB, resB.err))
		} else {
			combined.ServiceBData = &resB.data
		}

		if len(combined.Errors) > 0 {
			// a partial result still reaches the caller; the error only
			// feeds the aggregate breaker's failure accounting
			return combined, errors.New(combined.Errors[0])
		}
		return combined, nil
	})

	if result != nil {
		return result.(*CombinedData)
	}
	// breaker open: no call was attempted
	g.log.Warn().Err(err).Str("id", id).Msg("combined data fallback")
	return &CombinedData{Errors: []string{fmt.Sprintf("aggregation unavailable: %v", err)}}
}

func (g *Gateway) call(ctx context.Context, ds downstream, id, token string) (string, error) {
	if !ds.limiter.Allow() {
		metrics.ExternalRequestsTotal.WithLabelValues(ds.name, "rate_limited").Inc()
		return "", errRateLimited
	}

	start := time.Now()
	result, err := ds.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, fmt.Sprintf("%s/data/%s", ds.baseURL, id), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var body ServiceResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return body.Data, nil
	})
	metrics.ExternalRequestDuration.WithLabelValues(ds.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ExternalRequestsTotal.WithLabelValues(ds.name, outcomeLabel(err)).Inc()
		g.log.Warn().Err(err).Str("service", ds.name).Str("id", id).Msg("downstream call failed")
		return "", err
	}
	metrics.ExternalRequestsTotal.WithLabelValues(ds.name, "success").Inc()
	return result.(string), nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

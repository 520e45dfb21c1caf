package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"

	"dressing-virtuel/logging"
	"dressing-virtuel/metrics"
)

// StatusError is returned when a remote service answers with an unexpected status
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Code, e.Body)
}

// retryable reports whether the status is worth another attempt
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// CallPolicy bounds a remote call: per-attempt timeout and retries with exponential backoff
type CallPolicy struct {
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// callGuard runs calls to one remote capability through a circuit breaker
// and a bounded retry loop
type callGuard struct {
	name   string
	policy CallPolicy
	cb     *gobreaker.CircuitBreaker[any]
}

func newCallGuard(name string, policy CallPolicy) *callGuard {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				logging.Warn().Str("breaker", name).Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		// client errors mean the request was wrong, not that the service is down
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &callGuard{name: name, policy: policy, cb: cb}
}

// guarded runs fn with a per-attempt timeout, retrying transient failures.
// Client errors and an open breaker are not retried.
func guarded[T any](ctx context.Context, g *callGuard, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	start := time.Now()

	operation := func() error {
		attemptCtx := ctx
		if g.policy.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, g.policy.Timeout)
			defer cancel()
		}

		out, err := g.cb.Execute(func() (any, error) {
			return fn(attemptCtx)
		})
		if err == nil {
			result, _ = out.(T)
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	if g.policy.RetryInterval > 0 {
		b.InitialInterval = g.policy.RetryInterval
	}
	b.MaxElapsedTime = 0
	retries := g.policy.MaxRetries
	if retries < 0 {
		retries = 0
	}

	attempt := 0
	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx),
		func(err error, wait time.Duration) {
			attempt++
			logging.Debug().Err(err).Str("capability", g.name).Int("attempt", attempt).Dur("wait", wait).Msg("🔁 Retrying capability call")
		},
	)

	metrics.CapabilityCallDuration.WithLabelValues(g.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CapabilityCallFailures.WithLabelValues(g.name, failureReason(err)).Inc()
		var zero T
		return zero, err
	}
	return result, nil
}

func failureReason(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se):
		return fmt.Sprintf("status_%dxx", se.Code/100)
	default:
		return "transport"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

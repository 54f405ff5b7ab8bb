package apiclient

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"hrintake/internal/config"
	"hrintake/internal/errors"
)

// Breaker guards dashboard reads against a failing intake API
type Breaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

// NewBreaker creates a circuit breaker for one group of calls.
// It returns nil when the breaker is disabled; a nil Breaker runs calls directly.
func NewBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *Breaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("intake-api-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		// A 4xx answer means the API is up and rejected the request. A call the
		// caller canceled says nothing about the API either.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err) || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

// Execute runs fn with circuit breaker protection
func (b *Breaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	if b == nil || b.cb == nil {
		return fn()
	}

	body, err := b.cb.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "intake API temporarily unavailable", err).
			WithContext("breaker", b.cb.Name())
	}
	return body, err
}

// GetStats returns circuit breaker statistics
func (b *Breaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is closed
func (b *Breaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}

func isClientError(err error) bool {
	appErr, ok := errors.As(err)
	if !ok {
		return false
	}
	status, ok := appErr.Context[errors.ContextStatusCode].(int)
	return ok && status >= 400 && status < 500
}

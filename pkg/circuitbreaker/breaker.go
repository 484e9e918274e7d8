package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string
	// TripAfter consecutive failures open the circuit.
	TripAfter uint32
	// OpenFor is how long calls fail fast before a half-open trial call.
	OpenFor time.Duration
	// HalfOpenCalls is the number of calls let through while half-open.
	HalfOpenCalls uint32
	// ResetEvery clears failure counts while closed. Zero never clears.
	ResetEvery time.Duration
}

// SMTPConfig returns the breaker config for the outbound mail relay.
// A relay that keeps rejecting logins is left alone for a full minute.
func SMTPConfig() Config {
	return Config{
		Name:          "smtp",
		TripAfter:     3,
		OpenFor:       time.Minute,
		HalfOpenCalls: 1,
		ResetEvery:    time.Minute,
	}
}

// Breaker guards calls to a dependency that can fail for long stretches.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a closed breaker and publishes its state gauge.
func New(cfg Config) *Breaker {
	tripAfter := cfg.TripAfter
	if tripAfter == 0 {
		tripAfter = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenCalls,
		Interval:    cfg.ResetEvery,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: stateChanged,
	})}
}

func stateChanged(name string, from, to gobreaker.State) {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))

	log := logger.Info
	if to == gobreaker.StateOpen {
		log = logger.Warn
	}
	log("Circuit breaker state changed",
		zap.String("breaker", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.cb.Name() }

// Open reports whether calls are currently failing fast.
func (b *Breaker) Open() bool { return b.cb.State() == gobreaker.StateOpen }

// Execute runs fn through the breaker. Rejections wrap gobreaker.ErrOpenState
// or gobreaker.ErrTooManyRequests; errors from fn pass through unchanged.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, rejection(b.cb.Name(), err)
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker %q returned %T", b.cb.Name(), result)
	}
	return typed, nil
}

func rejection(name string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return fmt.Errorf("circuit breaker '%s' is open: %w", name, err)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("circuit breaker '%s' is probing, try later: %w", name, err)
	default:
		return err
	}
}

package advice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("advice circuit breaker is open")

// BreakerConfig configures the circuit breaker around a Generator.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string
	// Timeout bounds a single generation call. Zero disables it.
	Timeout time.Duration
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenFor is how long the circuit stays open before probing.
	OpenFor time.Duration
}

// DefaultBreakerConfig returns the settings used by the services.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "advice",
		Timeout:     30 * time.Second,
		MaxFailures: 3,
		OpenFor:     time.Minute,
	}
}

// ResilientGenerator adds a call timeout and a circuit breaker to a Generator.
// Empty responses do not count as failures.
type ResilientGenerator struct {
	gen     Generator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	log     zerolog.Logger
}

// NewResilientGenerator wraps gen.
func NewResilientGenerator(gen Generator, cfg BreakerConfig, log zerolog.Logger, rec metrics.Recorder) *ResilientGenerator {
	if rec == nil {
		rec = metrics.NoOp{}
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}

	log = log.With().Str("breaker", cfg.Name).Logger()
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmptyResponse)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")

			switch to {
			case gobreaker.StateClosed:
				rec.RecordCircuitState(name, metrics.CircuitClosed)
			case gobreaker.StateHalfOpen:
				rec.RecordCircuitState(name, metrics.CircuitHalfOpen)
			case gobreaker.StateOpen:
				rec.RecordCircuitState(name, metrics.CircuitOpen)
			}
		},
	}

	return &ResilientGenerator{
		gen:     gen,
		cb:      gobreaker.NewCircuitBreaker(settings),
		timeout: cfg.Timeout,
		log:     log,
	}
}

// Generate implements Generator.
func (r *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.gen.Generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.log.Warn().Msg("Circuit breaker open - advice request rejected")
			return "", ErrCircuitOpen
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ResilientGenerator.Generate: timeout after %s: %w", r.timeout, err)
		}
		return "", err
	}

	text, _ := out.(string)
	return text, nil
}

// State returns the current breaker state.
func (r *ResilientGenerator) State() gobreaker.State {
	return r.cb.State()
}

var _ Generator = (*ResilientGenerator)(nil)

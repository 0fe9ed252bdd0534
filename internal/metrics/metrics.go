package metrics

import "time"

// Recorder collects application metrics.
// Implementations can export to Prometheus or discard everything.
type Recorder interface {
	// Record mutations
	RecordMutation(operation string, success bool)
	SetRecordCounts(accounts, transactions int)

	// Persistence
	RecordPersist(backend string, success bool, duration time.Duration)

	// Advice
	RecordAdvice(outcome string, duration time.Duration)
	RecordCircuitState(name string, state CircuitState)

	// HTTP
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// CircuitState is the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests.
	CircuitOpen
	// CircuitHalfOpen lets a limited number of probe requests through.
	CircuitHalfOpen
)

// String returns the lowercase name of the state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOp discards all metrics.
type NoOp struct{}

func (NoOp) RecordMutation(string, bool) {}
func (NoOp) SetRecordCounts(int, int) {}
func (NoOp) RecordPersist(string, bool, time.Duration) {}
func (NoOp) RecordAdvice(string, time.Duration) {}
func (NoOp) RecordCircuitState(string, CircuitState) {}
func (NoOp) RecordHTTPRequest(string, string, int, time.Duration) {}

var _ Recorder = NoOp{}

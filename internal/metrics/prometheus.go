package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	mutations    *prometheus.CounterVec
	records      *prometheus.GaugeVec
	persists     *prometheus.CounterVec
	persistTime  *prometheus.HistogramVec
	advice       *prometheus.CounterVec
	adviceTime   prometheus.Histogram
	circuitState *prometheus.GaugeVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheus creates collectors under namespace. Call Register before use.
func NewPrometheus(namespace string) *Prometheus {
	return &Prometheus{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Record mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Number of stored records by kind",
			},
			[]string{"kind"},
		),
		persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_total",
				Help:      "Snapshot saves by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		persistTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persist_duration_seconds",
				Help:      "Snapshot save latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		advice: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "advice_total",
				Help:      "Advice requests by outcome",
			},
			[]string{"outcome"},
		),
		adviceTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "advice_duration_seconds",
				Help:      "Advice generation latency",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers all collectors with registry.
func (p *Prometheus) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		p.mutations,
		p.records,
		p.persists,
		p.persistTime,
		p.advice,
		p.adviceTime,
		p.circuitState,
		p.httpRequests,
		p.httpDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prometheus) RecordMutation(operation string, success bool) {
	p.mutations.WithLabelValues(operation, outcome(success)).Inc()
}

func (p *Prometheus) SetRecordCounts(accounts, transactions int) {
	p.records.WithLabelValues("account").Set(float64(accounts))
	p.records.WithLabelValues("transaction").Set(float64(transactions))
}

func (p *Prometheus) RecordPersist(backend string, success bool, duration time.Duration) {
	p.persists.WithLabelValues(backend, outcome(success)).Inc()
	p.persistTime.WithLabelValues(backend).Observe(duration.Seconds())
}

func (p *Prometheus) RecordAdvice(result string, duration time.Duration) {
	p.advice.WithLabelValues(result).Inc()
	p.adviceTime.Observe(duration.Seconds())
}

func (p *Prometheus) RecordCircuitState(name string, state CircuitState) {
	p.circuitState.WithLabelValues(name).Set(float64(state))
}

func (p *Prometheus) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

var _ Recorder = (*Prometheus)(nil)

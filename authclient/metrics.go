package authclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Outcome labels for login metrics.
const (
	outcomeSuccess     = "success"
	outcomeRejected    = "rejected"
	outcomeServerError = "server_error"
	outcomeTransport   = "transport_error"
	outcomeDecode      = "decode_error"
	outcomeUnavailable = "unavailable"
	outcomeThrottled   = "throttled"
)

var (
	loginRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmrpos_login_requests_total",
			Help: "Total number of POS login requests by outcome",
		},
		[]string{"outcome"},
	)

	loginDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xmrpos_login_request_duration_seconds",
			Help:    "Duration of POS login requests in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "xmrpos_login_circuit_breaker_state",
			Help: "Login circuit breaker state per instance (0=closed, 1=half-open, 2=open)",
		},
		[]string{"instance"},
	)
)

func recordLogin(outcome string, elapsed time.Duration) {
	loginRequests.WithLabelValues(outcome).Inc()
	loginDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func recordCircuitBreakerState(instance string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	circuitBreakerState.WithLabelValues(instance).Set(value)
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	switch Code(err) {
	case CodeRejected:
		return outcomeRejected
	case CodeServer:
		return outcomeServerError
	case CodeDecode:
		return outcomeDecode
	case CodeUnavailable:
		return outcomeUnavailable
	case CodeThrottled:
		return outcomeThrottled
	default:
		return outcomeTransport
	}
}

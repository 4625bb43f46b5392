package rpcgateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// endpointBreaker wraps one sony/gobreaker.CircuitBreaker per RPC
// endpoint, so a single backup's outage does not keep getting retried on
// every attempt once it has shown a sustained failure ratio. Instance-scoped
// rather than a package-level singleton (no global mutable state).
type endpointBreaker struct {
	cb    *gobreaker.CircuitBreaker
	state prometheus.Gauge
}

func newEndpointBreaker(name string, state *prometheus.GaugeVec) *endpointBreaker {
	eb := &endpointBreaker{}
	if state != nil {
		eb.state = state.WithLabelValues(name)
	}
	eb.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			if eb.state == nil {
				return
			}
			switch to {
			case gobreaker.StateClosed:
				eb.state.Set(0)
			case gobreaker.StateOpen:
				eb.state.Set(1)
			case gobreaker.StateHalfOpen:
				eb.state.Set(2)
			}
		},
	})
	return eb
}

func (b *endpointBreaker) allow() bool {
	return b.cb.State() != gobreaker.StateOpen
}

func (b *endpointBreaker) recordSuccess() {
	_, _ = b.cb.Execute(func() (any, error) { return nil, nil })
}

func (b *endpointBreaker) recordFailure() {
	_, _ = b.cb.Execute(func() (any, error) { return nil, errMarker })
}

var errMarker = &remoteError{Code: -1, Message: "circuit breaker observation"}

package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics groups the counters emitted by the HTTP gateway.
// A nil *GatewayMetrics is valid and records nothing.
type GatewayMetrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	waiters   prometheus.Gauge
}

// NewGatewayMetrics creates the gateway collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which is convenient in tests.
func NewGatewayMetrics(reg prometheus.Registerer) (*GatewayMetrics, error) {
	m := &GatewayMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "convivium_gateway_requests_total",
				Help: "Outbound API requests by method and response status.",
			},
			[]string{"method", "status"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "convivium_gateway_token_refreshes_total",
				Help: "Token refresh calls by outcome.",
			},
			[]string{"outcome"},
		),
		waiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "convivium_gateway_refresh_waiters",
			Help: "Requests parked behind an in-flight token refresh.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.refreshes, m.waiters} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveRequest counts a completed request; status 0 means a transport error.
func (m *GatewayMetrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
}

// ObserveRefresh counts a refresh call with outcome "success" or "failure".
func (m *GatewayMetrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *GatewayMetrics) WaiterAdded() {
	if m == nil {
		return
	}
	m.waiters.Inc()
}

func (m *GatewayMetrics) WaitersReleased(n int) {
	if m == nil || n == 0 {
		return
	}
	m.waiters.Sub(float64(n))
}

// Refreshes exposes the refresh counter for assertions.
func (m *GatewayMetrics) Refreshes() *prometheus.CounterVec { return m.refreshes }

// Requests exposes the request counter for assertions.
func (m *GatewayMetrics) Requests() *prometheus.CounterVec { return m.requests }

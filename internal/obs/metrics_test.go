package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGatewayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewGatewayMetrics(reg)
	if err != nil {
		t.Fatalf("NewGatewayMetrics: %v", err)
	}

	m.ObserveRequest("GET", 200)
	m.ObserveRequest("GET", 200)
	m.ObserveRequest("POST", 0)
	m.ObserveRefresh("success")
	m.WaiterAdded()
	m.WaiterAdded()
	m.WaitersReleased(2)

	if got := testutil.ToFloat64(m.Requests().WithLabelValues("GET", "200")); got != 2 {
		t.Fatalf("GET 200 = %v", got)
	}
	if got := testutil.ToFloat64(m.Requests().WithLabelValues("POST", "error")); got != 1 {
		t.Fatalf("POST error = %v", got)
	}
	if got := testutil.ToFloat64(m.Refreshes().WithLabelValues("success")); got != 1 {
		t.Fatalf("refresh success = %v", got)
	}
	if got := testutil.ToFloat64(m.waiters); got != 0 {
		t.Fatalf("waiters = %v", got)
	}

	if _, err := NewGatewayMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestNilGatewayMetrics(t *testing.T) {
	var m *GatewayMetrics
	m.ObserveRequest("GET", 500)
	m.ObserveRefresh("failure")
	m.WaiterAdded()
	m.WaitersReleased(1)
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG").String() != "debug" {
		t.Fatal("expected debug")
	}
	if parseLevel("nonsense").String() != "info" {
		t.Fatal("expected fallback to info")
	}
}

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := NewManager()

	m.RecordHTTPRequest("GET", "/api/projects", 200, 15*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/projects", 200, 5*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/projects", 400, 2*time.Millisecond)

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/projects", "200"))
	if got != 2 {
		t.Errorf("expected 2 GET 200 requests, got %v", got)
	}
	got = testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/projects", "400"))
	if got != 1 {
		t.Errorf("expected 1 POST 400 request, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	m := NewManager()

	m.RecordWorkloadCalculation()
	m.RecordWorkloadCalculation()
	m.RecordConstellationBuild()
	m.RecordSearchFallback()
	m.RecordAssistInvocation("summarize_call", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.workloadCalculations); got != 2 {
		t.Errorf("workload counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.constellationBuilds); got != 1 {
		t.Errorf("constellation counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.assistInvocations.WithLabelValues("summarize_call")); got != 1 {
		t.Errorf("assist counter = %v, want 1", got)
	}
}

func TestSubscriberGauge(t *testing.T) {
	m := NewManager()

	m.SubscriberConnected()
	m.SubscriberConnected()
	m.SubscriberDisconnected()

	if got := testutil.ToFloat64(m.realtimeSubscribers); got != 1 {
		t.Errorf("subscriber gauge = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewManager()
	m.RecordWorkloadCalculation()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "huddle_api_workload_calculations_total 1") {
		t.Errorf("scrape output missing workload counter:\n%s", body)
	}
	// runtime collectors are deliberately excluded
	if strings.Contains(body, "go_goroutines") {
		t.Error("scrape output should not include default Go collectors")
	}
}

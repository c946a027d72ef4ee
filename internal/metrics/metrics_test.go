package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSettlement(t *testing.T) {
	m := New()

	m.ObserveSettlement(OutcomeOK, time.Millisecond, 3)
	m.ObserveSettlement(OutcomeOK, time.Millisecond, 1)
	m.ObserveSettlement(OutcomeRejected, time.Microsecond, 0)

	if got := testutil.ToFloat64(m.settlementRuns.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.settlementRuns.WithLabelValues(OutcomeRejected)); got != 1 {
		t.Errorf("rejected runs = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.settlementTransfers); got != 1 {
		t.Errorf("transfers histogram series = %d, want 1", got)
	}
}

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("/splitfree.v1.GroupService/GetGroup", "ok", time.Millisecond)
	m.ObserveRPC("/splitfree.v1.GroupService/GetGroup", "not_found", time.Millisecond)

	got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitfree.v1.GroupService/GetGroup", "ok"))
	if got != 1 {
		t.Errorf("ok requests = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSettlement(OutcomeOK, time.Second, 1)
	m.ObserveRPC("p", "ok", time.Second)

	if m.Registry() != nil {
		t.Error("expected a nil registry")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 from a nil handler, got %d", rec.Code)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveSettlement(OutcomeOK, time.Millisecond, 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "splitfree_settlement_runs_total") {
		t.Errorf("metrics output missing settlement counter:\n%s", body)
	}
}

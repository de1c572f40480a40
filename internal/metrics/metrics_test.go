package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandExecutions", m.CommandExecutions},
		{"CommandDuration", m.CommandDuration},
		{"PlanGenerations", m.PlanGenerations},
		{"PlanDuration", m.PlanDuration},
		{"PlanTaskCount", m.PlanTaskCount},
		{"PlanHours", m.PlanHours},
		{"HTTPRequests", m.HTTPRequests},
		{"HTTPDuration", m.HTTPDuration},
		{"Events", m.Events},
		{"EventQueueDepth", m.EventQueueDepth},
		{"CatalogReloads", m.CatalogReloads},
		{"CatalogInfo", m.CatalogInfo},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestRecordPlan(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPlan("product_launch", true, 2*time.Millisecond, 6, 260)
	m.RecordPlan("", false, time.Millisecond, 0, 0)

	if got := testutil.ToFloat64(m.PlanGenerations.WithLabelValues("product_launch", "true")); got != 1 {
		t.Errorf("PlanGenerations product_launch/true = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PlanGenerations.WithLabelValues("none", "false")); got != 1 {
		t.Errorf("PlanGenerations none/false = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.PlanTaskCount); got != 1 {
		t.Errorf("PlanTaskCount series = %d, want 1", got)
	}
}

func TestRecordHTTPAndCommand(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTP("POST", "/api/create-plan", 200, 5*time.Millisecond)
	m.RecordHTTP("POST", "/api/create-plan", 400, time.Millisecond)
	m.RecordCommand("plan", true, time.Second)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/create-plan", "400")); got != 1 {
		t.Errorf("HTTPRequests 400 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("plan", "true")); got != 1 {
		t.Errorf("CommandExecutions = %v, want 1", got)
	}
}

func TestRecordEventsAndQueue(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordEvent("webhook", "delivered")
	m.RecordEvent("webhook", "delivered")
	m.RecordEvent("dispatcher", "dropped")
	m.SetQueueDepth(3)

	if got := testutil.ToFloat64(m.Events.WithLabelValues("webhook", "delivered")); got != 2 {
		t.Errorf("Events webhook/delivered = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EventQueueDepth); got != 3 {
		t.Errorf("EventQueueDepth = %v, want 3", got)
	}
}

func TestRecordCatalog(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCatalog("1.0.0", "aaa", nil)
	m.RecordCatalog("2.0.0", "bbb", nil)
	m.RecordCatalog("", "", errors.NewCatalogSchemaError([]string{"bad"}))

	if got := testutil.ToFloat64(m.CatalogReloads.WithLabelValues("true")); got != 2 {
		t.Errorf("CatalogReloads true = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CatalogReloads.WithLabelValues("false")); got != 1 {
		t.Errorf("CatalogReloads false = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.CatalogInfo); got != 1 {
		t.Errorf("CatalogInfo series = %d, want 1 after reset", got)
	}
	if got := testutil.ToFloat64(m.CatalogInfo.WithLabelValues("2.0.0", "bbb")); got != 1 {
		t.Errorf("CatalogInfo active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("CATALOG-002", "catalog")); got != 1 {
		t.Errorf("Errors CATALOG-002 = %v, want 1", got)
	}
}

func TestRecordError(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordError(errors.NewGoalTooShortError(3, 1), "server")
	m.RecordError(fmt.Errorf("boom"), "server")
	m.RecordError(nil, "server")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("GOAL-001", "server")); got != 1 {
		t.Errorf("Errors GOAL-001 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("unknown", "server")); got != 1 {
		t.Errorf("Errors unknown = %v, want 1", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordPlan("generic", true, time.Millisecond, 4, 80)
	m.RecordHTTP("GET", "/api/health", 200, time.Millisecond)
	m.RecordCommand("plan", true, time.Millisecond)
	m.RecordEvent("log", "delivered")
	m.SetQueueDepth(1)
	m.RecordCatalog("v", "d", nil)
	m.RecordError(fmt.Errorf("x"), "test")
}

func TestHandlerFor(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordPlan("learning", true, time.Millisecond, 4, 120)

	handler := HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{
		"smartplan_plan_generations_total",
		"smartplan_plan_duration_seconds",
		"smartplan_plan_task_count",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}

func TestNewProcessRegistry(t *testing.T) {
	reg, m := NewProcessRegistry()
	if m == nil {
		t.Fatal("expected metrics, got nil")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "go_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected go runtime metrics in process registry")
	}
}

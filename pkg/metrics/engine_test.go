package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEngineMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.IncCartMutation("add")
	m.IncCartMutation("add")
	m.IncCartMutation("remove")
	m.IncRefreshFailure()
	m.IncUploadFailure()
	m.ObserveCheckoutDuration(250 * time.Millisecond)
	m.IncCheckoutOutcome("success")
	m.IncCheckoutOutcome("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	if got := counterValue(t, byName, "cart_mutations_total", "op", "add"); got != 2 {
		t.Fatalf("add mutations = %v, want 2", got)
	}
	if got := counterValue(t, byName, "cart_mutations_total", "op", "remove"); got != 1 {
		t.Fatalf("remove mutations = %v, want 1", got)
	}
	if got := counterValue(t, byName, "checkout_submissions_total", "outcome", "unknown"); got != 1 {
		t.Fatalf("blank outcome should normalize to unknown, got %v", got)
	}

	fam, ok := byName["checkout_duration_seconds"]
	if !ok || len(fam.GetMetric()) == 0 {
		t.Fatalf("checkout duration histogram missing")
	}
	if fam.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one duration sample")
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.IncCartMutation("add")
	m.IncRefreshFailure()
	m.IncUploadFailure()
	m.ObserveCheckoutDuration(time.Second)
	m.IncCheckoutOutcome("success")

	empty := NewEngineMetrics(nil)
	empty.IncCartMutation("add")
}

func counterValue(t *testing.T, byName map[string]*dto.MetricFamily, name, labelKey, labelValue string) float64 {
	t.Helper()
	fam, ok := byName[name]
	if !ok {
		t.Fatalf("metric %s not registered", name)
	}
	for _, metric := range fam.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == labelKey && label.GetValue() == labelValue {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with %s=%s not found", name, labelKey, labelValue)
	return 0
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "ledger-backup"

	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	if got := testutil.ToFloat64(metrics.success.WithLabelValues(job)); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.failure.WithLabelValues(job)); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got := testutil.CollectAndCount(metrics.duration, "job_duration_seconds"); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var metrics *CronJobMetrics
	metrics.ObserveDuration("job", time.Second)
	metrics.IncSuccess("job")
	metrics.IncFailure("job")

	empty := NewCronJobMetrics(nil)
	empty.ObserveDuration("job", time.Second)
	empty.IncSuccess("job")
	empty.IncFailure("job")
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
	if got := normalizeLabel("prune"); got != "prune" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

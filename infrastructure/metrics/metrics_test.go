package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewWithRegistry("embedcore-test", reg)
}

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := <-ch
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	if pb.Gauge != nil {
		return pb.Gauge.GetValue()
	}
	return 0
}

func TestRecordTaskPosted_IncrementsDepthAndCounter(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordTaskPosted("svc", "foreground", "nestable")

	if got := counterValue(t, m.QueueDepth.WithLabelValues("svc", "foreground")); got != 1 {
		t.Errorf("QueueDepth = %v, want 1", got)
	}
	if got := counterValue(t, m.TasksPosted.WithLabelValues("svc", "foreground", "nestable")); got != 1 {
		t.Errorf("TasksPosted = %v, want 1", got)
	}
}

func TestRecordTaskCompleted_DecrementsDepth(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordTaskPosted("svc", "worker", "non_nestable")
	m.RecordTaskCompleted("svc", "worker", "ok", 5*time.Millisecond)

	if got := counterValue(t, m.QueueDepth.WithLabelValues("svc", "worker")); got != 0 {
		t.Errorf("QueueDepth = %v, want 0", got)
	}
	if got := counterValue(t, m.TasksCompleted.WithLabelValues("svc", "worker", "ok")); got != 1 {
		t.Errorf("TasksCompleted = %v, want 1", got)
	}
}

func TestRecordModuleResolution_TracksCacheOutcome(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordModuleResolution("svc", "resolved", true, time.Microsecond)
	m.RecordModuleResolution("svc", "resolved", false, time.Microsecond)

	if got := counterValue(t, m.ModuleCacheHitsTotal.WithLabelValues("svc", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := counterValue(t, m.ModuleCacheHitsTotal.WithLabelValues("svc", "miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestRecordSnapshotWrite_AccumulatesBytes(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordSnapshotWrite("svc", "ok", 128)
	m.RecordSnapshotWrite("svc", "ok", 256)

	if got := counterValue(t, m.SnapshotBytesWritten); got != 384 {
		t.Errorf("SnapshotBytesWritten = %v, want 384", got)
	}
	if got := counterValue(t, m.SnapshotWritesTotal.WithLabelValues("svc", "ok")); got != 2 {
		t.Errorf("SnapshotWritesTotal = %v, want 2", got)
	}
}

func TestGlobal_InitIsIdempotent(t *testing.T) {
	first := Init("embedcore-global-test")
	second := Global()
	if first != second {
		t.Errorf("Global() returned a different instance than Init()")
	}
}

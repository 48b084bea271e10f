// Package metrics provides Prometheus metrics collection for the
// embedding runtime core: queue depths, worker pool occupancy, task
// throughput, module resolution, and snapshot I/O.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for a running host process.
type Metrics struct {
	// Queue metrics
	QueueDepth     *prometheus.GaugeVec
	TasksPosted    *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec

	// Worker pool metrics
	PoolWorkersActive *prometheus.GaugeVec
	PoolWorkersIdle   *prometheus.GaugeVec

	// Module resolution metrics
	ModuleResolutionsTotal    *prometheus.CounterVec
	ModuleResolutionDuration  *prometheus.HistogramVec
	ModuleCacheHitsTotal      *prometheus.CounterVec

	// Snapshot metrics
	SnapshotWritesTotal   *prometheus.CounterVec
	SnapshotReadsTotal    *prometheus.CounterVec
	SnapshotBytesWritten  prometheus.Counter
	SnapshotBytesRead     prometheus.Counter

	// Host health
	IsolatesActive prometheus.Gauge
	HostUptime     prometheus.Gauge
}

// New creates a Metrics instance registered against the default
// Prometheus registerer.
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against a
// caller-supplied registerer, useful for isolated tests.
func NewWithRegistry(serviceName string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "embedcore_queue_depth",
				Help: "Current number of pending tasks in a queue",
			},
			[]string{"service", "queue"},
		),
		TasksPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_tasks_posted_total",
				Help: "Total number of tasks posted to a queue",
			},
			[]string{"service", "queue", "nestability"},
		),
		TasksCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_tasks_completed_total",
				Help: "Total number of tasks completed by a worker pool or foreground runner",
			},
			[]string{"service", "queue", "status"},
		),
		TaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedcore_task_duration_seconds",
				Help:    "Task execution duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"service", "queue"},
		),

		PoolWorkersActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "embedcore_pool_workers_active",
				Help: "Current number of worker pool threads executing a task",
			},
			[]string{"service", "pool"},
		),
		PoolWorkersIdle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "embedcore_pool_workers_idle",
				Help: "Current number of worker pool threads awaiting a task",
			},
			[]string{"service", "pool"},
		),

		ModuleResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_module_resolutions_total",
				Help: "Total number of module specifier resolutions, by outcome",
			},
			[]string{"service", "status"},
		),
		ModuleResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedcore_module_resolution_duration_seconds",
				Help:    "Module resolution duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"service"},
		),
		ModuleCacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_module_cache_hits_total",
				Help: "Total number of module resolution cache hits vs misses",
			},
			[]string{"service", "outcome"},
		),

		SnapshotWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_snapshot_writes_total",
				Help: "Total number of snapshot write operations, by outcome",
			},
			[]string{"service", "status"},
		),
		SnapshotReadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedcore_snapshot_reads_total",
				Help: "Total number of snapshot load operations, by outcome",
			},
			[]string{"service", "status"},
		),
		SnapshotBytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "embedcore_snapshot_bytes_written_total",
				Help: "Total number of bytes written across all snapshots",
			},
		),
		SnapshotBytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "embedcore_snapshot_bytes_read_total",
				Help: "Total number of bytes read across all snapshot loads",
			},
		),

		IsolatesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedcore_isolates_active",
				Help: "Current number of live script isolates",
			},
		),
		HostUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedcore_host_uptime_seconds",
				Help: "Host process uptime in seconds",
			},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.QueueDepth,
			m.TasksPosted,
			m.TasksCompleted,
			m.TaskDuration,
			m.PoolWorkersActive,
			m.PoolWorkersIdle,
			m.ModuleResolutionsTotal,
			m.ModuleResolutionDuration,
			m.ModuleCacheHitsTotal,
			m.SnapshotWritesTotal,
			m.SnapshotReadsTotal,
			m.SnapshotBytesWritten,
			m.SnapshotBytesRead,
			m.IsolatesActive,
			m.HostUptime,
		)
	}

	_ = serviceName
	return m
}

// RecordTaskPosted increments the posted-task counter and queue depth
// gauge for a given queue name and nestability label.
func (m *Metrics) RecordTaskPosted(service, queue, nestability string) {
	m.TasksPosted.WithLabelValues(service, queue, nestability).Inc()
	m.QueueDepth.WithLabelValues(service, queue).Inc()
}

// RecordTaskCompleted decrements the queue depth gauge, records the
// completion status, and observes the task's execution duration.
func (m *Metrics) RecordTaskCompleted(service, queue, status string, duration time.Duration) {
	m.QueueDepth.WithLabelValues(service, queue).Dec()
	m.TasksCompleted.WithLabelValues(service, queue, status).Inc()
	m.TaskDuration.WithLabelValues(service, queue).Observe(duration.Seconds())
}

// SetPoolOccupancy sets the active/idle worker gauges for a named pool.
func (m *Metrics) SetPoolOccupancy(service, pool string, active, idle int) {
	m.PoolWorkersActive.WithLabelValues(service, pool).Set(float64(active))
	m.PoolWorkersIdle.WithLabelValues(service, pool).Set(float64(idle))
}

// RecordModuleResolution records a module resolution attempt and its
// duration, plus whether it hit the resolver's cache.
func (m *Metrics) RecordModuleResolution(service, status string, cacheHit bool, duration time.Duration) {
	m.ModuleResolutionsTotal.WithLabelValues(service, status).Inc()
	m.ModuleResolutionDuration.WithLabelValues(service).Observe(duration.Seconds())
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.ModuleCacheHitsTotal.WithLabelValues(service, outcome).Inc()
}

// RecordSnapshotWrite records a snapshot create operation.
func (m *Metrics) RecordSnapshotWrite(service, status string, bytesWritten int) {
	m.SnapshotWritesTotal.WithLabelValues(service, status).Inc()
	if bytesWritten > 0 {
		m.SnapshotBytesWritten.Add(float64(bytesWritten))
	}
}

// RecordSnapshotRead records a snapshot load operation.
func (m *Metrics) RecordSnapshotRead(service, status string, bytesRead int) {
	m.SnapshotReadsTotal.WithLabelValues(service, status).Inc()
	if bytesRead > 0 {
		m.SnapshotBytesRead.Add(float64(bytesRead))
	}
}

// SetIsolatesActive sets the current live-isolate gauge.
func (m *Metrics) SetIsolatesActive(count int) {
	m.IsolatesActive.Set(float64(count))
}

// UpdateUptime sets the host uptime gauge relative to a start time.
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.HostUptime.Set(time.Since(startTime).Seconds())
}

var (
	globalMetrics *Metrics
	globalMu      sync.Mutex
)

// Init initializes the global metrics instance, if not already set.
func Init(serviceName string) *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New(serviceName)
	}
	return globalMetrics
}

// Global returns the global metrics instance, initializing a fallback
// one if Init was never called.
func Global() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New("unknown")
	}
	return globalMetrics
}

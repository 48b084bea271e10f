// Package platform implements the process-wide adapter that bridges
// the embedded engine's scheduling requests to the worker pools and
// per-isolate foreground runners: §4.F's engine-facing contract.
package platform

import (
	"sync"
	"time"

	"github.com/R3E-Network/embedcore/infrastructure/metrics"
	"github.com/R3E-Network/embedcore/internal/foreground"
	"github.com/R3E-Network/embedcore/internal/hostthread"
	"github.com/R3E-Network/embedcore/internal/queue"
	"github.com/R3E-Network/embedcore/internal/workerpool"
)

// EngineTask is the unit of work the engine hands the adapter for
// worker-thread execution.
type EngineTask interface {
	Run()
}

// IsolateHelper resolves an isolate identity to its foreground runner,
// the seam the adapter uses instead of owning isolates directly.
type IsolateHelper interface {
	ForegroundRunner(isolateID string, priority hostthread.Priority) *foreground.Runner
}

// Clock is re-exported from queue so platform callers need not import
// both packages to implement a test double.
type Clock = queue.Clock

// RealClock is re-exported from queue for the same reason.
type RealClock = queue.RealClock

// Config sizes the adapter's worker and delayed-worker pools.
type Config struct {
	WorkerThreads        int
	DelayedWorkerThreads int
	ServiceName          string
	Clock                Clock
	Metrics              *metrics.Metrics
}

// Adapter is the process-wide platform singleton. It exclusively owns
// the worker and delayed-worker pools and holds a non-owning reference
// to an IsolateHelper for foreground-runner lookups.
type Adapter struct {
	helper IsolateHelper
	clock  Clock

	workers     *workerpool.Pool
	blocking    *workerpool.Pool
	lowPriority *workerpool.Pool
	delayed     *workerpool.DelayedPool

	mu      sync.Mutex
	inited  bool
	shut    bool
	jobs    []*JobHandle
	tracing TracingController
}

// TracingController is the engine's tracing seam; only accepted while
// the adapter is inited, and null writes after init are dropped, per
// §4.F's setter discipline.
type TracingController interface {
	IsCategoryEnabled(category string) bool
}

var (
	singletonMu sync.Mutex
	singleton   *Adapter
)

// Initialize creates the adapter singleton on first call and installs
// helper as its isolate lookup seam. A second call while already
// inited returns the existing singleton unchanged; re-init after
// Shutdown is permitted and creates a fresh singleton.
func Initialize(cfg Config, helper IsolateHelper) *Adapter {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil && singleton.inited {
		return singleton
	}

	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	a := &Adapter{helper: helper, clock: cfg.Clock}
	a.workers = workerpool.New("worker", cfg.ServiceName, cfg.WorkerThreads, hostthread.Default, metricsOpt(cfg.Metrics)...)
	a.blocking = workerpool.New("blocking", cfg.ServiceName, cfg.WorkerThreads, hostthread.UserBlocking, metricsOpt(cfg.Metrics)...)
	a.lowPriority = workerpool.New("low-priority", cfg.ServiceName, cfg.WorkerThreads, hostthread.BestEffort, metricsOpt(cfg.Metrics)...)
	a.delayed = workerpool.NewDelayed("delayed-worker", cfg.ServiceName, cfg.DelayedWorkerThreads, hostthread.BestEffort, cfg.Clock, metricsOpt(cfg.Metrics)...)
	a.inited = true

	singleton = a
	return a
}

func metricsOpt(m *metrics.Metrics) []workerpool.Option {
	if m == nil {
		return nil
	}
	return []workerpool.Option{workerpool.WithMetrics(m)}
}

// Get returns the current singleton, or nil if Initialize has never
// been called (or the most recent instance was shut down).
func Get() *Adapter {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil && singleton.inited {
		return singleton
	}
	return nil
}

// Shutdown tears down the singleton's pools. Re-init after shutdown is
// permitted per §4.F.
func Shutdown() {
	singletonMu.Lock()
	a := singleton
	singletonMu.Unlock()
	if a == nil {
		return
	}

	a.mu.Lock()
	if a.shut {
		a.mu.Unlock()
		return
	}
	a.shut = true
	a.inited = false
	a.mu.Unlock()

	a.workers.Terminate()
	a.blocking.Terminate()
	a.lowPriority.Terminate()
	a.delayed.Terminate()
}

// SetTracingController installs the engine's tracing seam. Accepted
// only while inited; a nil write after init, or any write before init,
// is silently dropped, preventing the engine from observing mutating
// platform state mid-run.
func (a *Adapter) SetTracingController(tc TracingController) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.inited || tc == nil {
		return
	}
	a.tracing = tc
}

// GetTracingController returns the currently installed controller, if any.
func (a *Adapter) GetTracingController() TracingController {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracing
}

// NumberOfWorkerThreads reports the hardware core count, the figure
// the engine uses to size its own internal task fan-out.
func (a *Adapter) NumberOfWorkerThreads() int {
	return hostthread.HardwareCores()
}

// GetForegroundTaskRunner delegates to the isolate helper, the only
// component that knows how to map an isolate identity to its runner.
func (a *Adapter) GetForegroundTaskRunner(isolateID string, priority hostthread.Priority) *foreground.Runner {
	return a.helper.ForegroundRunner(isolateID, priority)
}

// CallOnWorkerThread posts t to the non-blocking worker pool.
func (a *Adapter) CallOnWorkerThread(t EngineTask) bool {
	return a.workers.PostTask(workerpool.TaskFunc(t.Run))
}

// CallBlockingTaskOnWorkerThread posts t to the blocking worker pool.
func (a *Adapter) CallBlockingTaskOnWorkerThread(t EngineTask) bool {
	return a.blocking.PostTask(workerpool.TaskFunc(t.Run))
}

// CallLowPriorityTaskOnWorkerThread posts t to the low-priority pool.
func (a *Adapter) CallLowPriorityTaskOnWorkerThread(t EngineTask) bool {
	return a.lowPriority.PostTask(workerpool.TaskFunc(t.Run))
}

// CallDelayedOnWorkerThread posts t to the delayed-worker pool,
// eligible after delaySeconds.
func (a *Adapter) CallDelayedOnWorkerThread(t EngineTask, delaySeconds float64) bool {
	return a.delayed.PostDelayedTask(delaySeconds, workerpool.TaskFunc(t.Run))
}

// MonotonicallyIncreasingTime returns host seconds since an
// unspecified epoch, monotonic and double-precision.
func (a *Adapter) MonotonicallyIncreasingTime() float64 {
	return a.clock.MonotonicSeconds()
}

// CurrentClockTimeMilliseconds returns wall-clock milliseconds.
func (a *Adapter) CurrentClockTimeMilliseconds() int64 {
	return time.Now().UnixMilli()
}

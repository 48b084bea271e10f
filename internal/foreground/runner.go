// Package foreground implements the per-isolate task runner: the
// engine-facing posting API plus the consumption methods the platform
// adapter uses to pump work on the isolate's own thread.
package foreground

import (
	"sync"
	"sync/atomic"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
	"github.com/R3E-Network/embedcore/internal/queue"
)

// Task is a unit of work the runner dequeues and the embedder runs on
// the isolate's thread.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func()

func (f TaskFunc) Run() { f() }

// Runner is the per-isolate foreground task runner: one nestable queue
// holding both immediate and delayed tasks, a plain FIFO for idle
// tasks, a nesting-depth counter, and a
// latched stopped flag. It exposes the five post methods the embedded
// engine expects plus the pop/process methods the platform adapter
// uses to drive them.
type Runner struct {
	general *queue.Nestable[Task]
	idle    *queue.FIFO[Task]

	mu      sync.Mutex
	stopped bool
	depth   int32
}

// New creates a Runner driven by clock for delayed-task promotion.
func New(clock queue.Clock) *Runner {
	return &Runner{
		general: queue.NewNestable[Task](clock),
		idle:    queue.NewFIFO[Task](),
	}
}

func (r *Runner) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// PostTask enqueues a nestable task. Rejected once stopped.
func (r *Runner) PostTask(t Task) bool {
	if r.isStopped() {
		return false
	}
	r.general.PushItem(t)
	return true
}

// PostNonNestableTask enqueues a non-nestable task. Rejected once stopped.
func (r *Runner) PostNonNestableTask(t Task) bool {
	if r.isStopped() {
		return false
	}
	r.general.PushNonNestableItem(t)
	return true
}

// PostDelayedTask schedules a nestable task for eligibility after
// delaySeconds. Negative delays are a usage error (§4.E); the caller
// is expected to have validated this upstream per the debug-fatal
// policy, so this returns the error rather than panicking.
func (r *Runner) PostDelayedTask(delaySeconds float64, t Task) (bool, error) {
	if r.isStopped() {
		return false, nil
	}
	if delaySeconds < 0 {
		return false, embederr.NegativeDelay(delaySeconds)
	}
	r.general.PushItemDelayed(delaySeconds, t)
	return true, nil
}

// PostNonNestableDelayedTask schedules a non-nestable task for
// eligibility after delaySeconds.
func (r *Runner) PostNonNestableDelayedTask(delaySeconds float64, t Task) (bool, error) {
	if r.isStopped() {
		return false, nil
	}
	if delaySeconds < 0 {
		return false, embederr.NegativeDelay(delaySeconds)
	}
	r.general.PushNonNestableItemDelayed(delaySeconds, t)
	return true, nil
}

// PostIdleTask enqueues an idle task. Rejected once stopped.
func (r *Runner) PostIdleTask(t Task) bool {
	if r.isStopped() {
		return false
	}
	r.idle.PushItem(t)
	return true
}

// IdleTasksEnabled, NonNestableTasksEnabled, and
// NonNestableDelayedTasksEnabled all report true: this runner supports
// every lane the engine's TaskRunner interface can ask about.
func (r *Runner) IdleTasksEnabled() bool              { return true }
func (r *Runner) NonNestableTasksEnabled() bool       { return true }
func (r *Runner) NonNestableDelayedTasksEnabled() bool { return true }

// PopTask dequeues the next eligible task at the current nesting depth.
func (r *Runner) PopTask() (Task, bool) {
	return r.general.GetNext(int(atomic.LoadInt32(&r.depth)))
}

// PopIdleTask dequeues the next idle task, if any.
func (r *Runner) PopIdleTask() (Task, bool) {
	return r.idle.GetNextItem()
}

// ProcessDelayedTasks promotes any ready delayed entries; callers
// normally rely on PopTask to trigger this implicitly, but the
// platform adapter may also drive it directly on a timer.
func (r *Runner) ProcessDelayedTasks() {
	r.general.MayHaveItems()
}

// Stop terminates both queues atomically and latches the stopped flag.
// Further posts are rejected; further pops return nothing.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.general.Terminate()
	r.idle.Terminate()
}

// Stopped reports whether Stop has been called.
func (r *Runner) Stopped() bool {
	return r.isStopped()
}

// Depth reports the current nesting depth.
func (r *Runner) Depth() int {
	return int(atomic.LoadInt32(&r.depth))
}

// TaskRunScope is a scope-guard mirroring the source's RAII
// TaskRunScope: constructing it increments nesting depth, Release
// decrements it. Callers must `defer scope.Release()` immediately
// after acquiring one.
type TaskRunScope struct {
	runner   *Runner
	released int32
}

// EnterTaskRunScope increments r's nesting depth and returns a scope
// guard whose Release restores it. Depth never decreases past zero;
// a Release call past that point is a bug and panics.
func EnterTaskRunScope(r *Runner) *TaskRunScope {
	atomic.AddInt32(&r.depth, 1)
	return &TaskRunScope{runner: r}
}

// Release decrements the nesting depth. Safe to call at most once;
// a second call panics, matching the "depth never negative" invariant
// being fatal on violation.
func (s *TaskRunScope) Release() {
	if !atomic.CompareAndSwapInt32(&s.released, 0, 1) {
		panic("foreground: TaskRunScope released more than once")
	}
	newDepth := atomic.AddInt32(&s.runner.depth, -1)
	if newDepth < 0 {
		panic("foreground: nesting depth went negative")
	}
}

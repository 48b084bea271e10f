package platform

import (
	"sync"

	"github.com/R3E-Network/embedcore/internal/workerpool"
)

// JobTask is the engine's concurrent, dynamically-scalable unit of
// work: Run is invoked repeatedly (possibly concurrently) until
// GetMaxConcurrency reports no further capacity.
type JobTask interface {
	Run()
	GetMaxConcurrency(workerCount int) int
}

// poster is the subset of workerpool.Pool a JobHandle needs; satisfied
// by the adapter's low-priority pool.
type poster interface {
	PostTask(t workerpool.Task) bool
}

// JobHandle represents a posted or created job. CreateJob yields a
// handle in a paused state; NotifyConcurrencyIncrease un-pauses it by
// running Run on workers up to GetMaxConcurrency concurrently. Join
// blocks until GetMaxConcurrency has stably returned zero.
type JobHandle struct {
	task JobTask
	pool poster

	mu        sync.Mutex
	running   int
	done      bool
	quiescent *sync.Cond
}

func newJobHandle(task JobTask, pool poster) *JobHandle {
	h := &JobHandle{task: task, pool: pool}
	h.quiescent = sync.NewCond(&h.mu)
	return h
}

// CreateJob returns a handle in a paused state; the caller must call
// NotifyConcurrencyIncrease to start work.
func (a *Adapter) CreateJob(task JobTask) *JobHandle {
	return newJobHandle(task, a.lowPriority)
}

// PostJob is CreateJob followed by an immediate un-pause.
func (a *Adapter) PostJob(task JobTask) *JobHandle {
	h := a.CreateJob(task)
	h.NotifyConcurrencyIncrease()
	return h
}

// NotifyConcurrencyIncrease posts additional concurrent Run
// invocations up to GetMaxConcurrency(currentWorkerCount).
func (h *JobHandle) NotifyConcurrencyIncrease() {
	h.mu.Lock()
	current := h.running
	h.mu.Unlock()

	want := h.task.GetMaxConcurrency(current)
	for i := current; i < want; i++ {
		h.mu.Lock()
		h.running++
		h.mu.Unlock()
		h.pool.PostTask(workerpool.TaskFunc(h.runOnce))
	}
}

func (h *JobHandle) runOnce() {
	h.task.Run()

	h.mu.Lock()
	h.running--
	again := h.task.GetMaxConcurrency(h.running) > h.running
	if again {
		h.running++
	} else if h.running == 0 && h.task.GetMaxConcurrency(0) == 0 {
		h.done = true
		h.quiescent.Broadcast()
	}
	h.mu.Unlock()

	if again {
		h.pool.PostTask(workerpool.TaskFunc(h.runOnce))
	}
}

// Join blocks until GetMaxConcurrency has returned zero for a stable
// quiescence (no workers running and no further capacity reported).
func (h *JobHandle) Join() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for !(h.running == 0 && h.task.GetMaxConcurrency(0) == 0) {
		h.quiescent.Wait()
	}
}

// RunningCount reports how many concurrent Run invocations are
// currently in flight for this job.
func (h *JobHandle) RunningCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

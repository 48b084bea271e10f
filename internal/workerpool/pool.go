// Package workerpool implements the fixed-size and delayed worker
// thread pools that drain the task-scheduling fabric's FIFO and
// delayed queues.
package workerpool

import (
	"sync"
	"time"

	"github.com/R3E-Network/embedcore/infrastructure/metrics"
	"github.com/R3E-Network/embedcore/internal/hostthread"
	"github.com/R3E-Network/embedcore/internal/queue"
)

// Task is the single-method contract every posted unit of work
// satisfies, collapsing the source's deep ThreadPoolTask hierarchy
// into one interface.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func()

func (f TaskFunc) Run() { f() }

// Pool is a fixed-size worker set draining a FIFO queue of Task. Every
// worker is an eagerly-started goroutine parked on a condition
// variable until work arrives or the pool exits.
type Pool struct {
	name     string
	service  string
	queue    *queue.FIFO[Task]
	priority hostthread.Priority

	mu       sync.Mutex
	cond     *sync.Cond
	exiting  bool
	numWorkers int
	active   int

	wg      sync.WaitGroup
	metrics *metrics.Metrics
}

// options holds construction-time settings shared by Pool and
// DelayedPool so both accept the same Option values.
type options struct {
	metrics *metrics.Metrics
}

// Option configures a Pool or DelayedPool at construction time.
type Option func(*options)

// WithMetrics attaches a Metrics sink for queue-depth and occupancy
// gauges. Without this option the pool runs unmonitored.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func resolveOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a Pool with the requested worker count (per §4.D's
// negative/zero/positive clamping rule) and priority class, then
// starts all workers eagerly.
func New(name, service string, requestedWorkers int, priority hostthread.Priority, opts ...Option) *Pool {
	p := &Pool{
		name:       name,
		service:    service,
		queue:      queue.NewFIFO[Task](),
		priority:   priority,
		numWorkers: hostthread.ClampWorkerCount(requestedWorkers),
	}
	p.cond = sync.NewCond(&p.mu)
	p.metrics = resolveOptions(opts).metrics

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		th := hostthread.New(name, priority)
		go func() {
			defer p.wg.Done()
			th.Run(p.processTasks)
		}()
	}
	return p
}

// NumWorkers reports the pool's fixed worker count.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// IsExiting reports whether Terminate has been called.
func (p *Pool) IsExiting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exiting
}

// Priority reports the pool's thread priority class.
func (p *Pool) Priority() hostthread.Priority { return p.priority }

// PostTask enqueues a task for the next available worker. Returns
// false if the pool is exiting; the task is silently dropped per §5
// ("post-shutdown posts are dropped silently").
func (p *Pool) PostTask(t Task) bool {
	p.mu.Lock()
	if p.exiting {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	p.queue.PushItem(t)
	if p.metrics != nil {
		p.metrics.RecordTaskPosted(p.service, p.name, "worker")
	}
	p.cond.Broadcast()
	return true
}

func (p *Pool) processTasks() {
	for {
		p.mu.Lock()
		for !p.exiting && !p.queue.MayHaveItems() {
			p.cond.Wait()
		}
		if p.exiting {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		task, ok := p.queue.GetNextItem()
		if !ok {
			continue
		}

		p.mu.Lock()
		p.active++
		if p.metrics != nil {
			p.metrics.SetPoolOccupancy(p.service, p.name, p.active, p.numWorkers-p.active)
		}
		p.mu.Unlock()

		start := time.Now()
		task.Run()
		if p.metrics != nil {
			p.metrics.RecordTaskCompleted(p.service, p.name, "ok", time.Since(start))
		}

		p.mu.Lock()
		p.active--
		if p.metrics != nil {
			p.metrics.SetPoolOccupancy(p.service, p.name, p.active, p.numWorkers-p.active)
		}
		p.mu.Unlock()
	}
}

// Terminate sets the exit flag, clears the queue, wakes every worker,
// and blocks until all workers have joined. Joining is mandatory: a
// leaked running worker is treated as a bug, never a best-effort cleanup.
func (p *Pool) Terminate() {
	p.mu.Lock()
	if p.exiting {
		p.mu.Unlock()
		return
	}
	p.exiting = true
	// The pool's shutdown contract clears the queue outright (unlike a
	// bare FIFO.Terminate, which retains unread contents for the
	// caller to inspect); swap in a fresh, pre-terminated queue.
	p.queue = queue.NewFIFO[Task]()
	p.queue.Terminate()
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

package workerpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/R3E-Network/embedcore/infrastructure/metrics"
	"github.com/R3E-Network/embedcore/internal/hostthread"
	"github.com/R3E-Network/embedcore/internal/queue"
)

// pumpPollInterval bounds how long the pump goroutine can sleep
// between JobsReady signals, matching the source's "short polling
// period" fallback in addition to the wake channel.
const pumpPollInterval = 20 * time.Millisecond

// DelayedPool adds a single pump goroutine to a fixed worker set,
// promoting ready entries from a Delayed queue into its FIFO lane on
// wake. Posting continues while paused; only dequeuing is gated.
type DelayedPool struct {
	name    string
	service string
	queue   *queue.Delayed[Task]

	mu         sync.Mutex
	cond       *sync.Cond
	exiting    bool
	paused     int32
	numWorkers int
	active     int

	wake    chan struct{}
	wg      sync.WaitGroup
	metrics *metrics.Metrics
}

// NewDelayed creates a DelayedPool with its workers and pump goroutine
// started eagerly.
func NewDelayed(name, service string, requestedWorkers int, priority hostthread.Priority, clock queue.Clock, opts ...Option) *DelayedPool {
	dq := queue.NewDelayed[Task](clock)

	p := &DelayedPool{
		name:       name,
		service:    service,
		queue:      dq,
		numWorkers: hostthread.ClampWorkerCount(requestedWorkers),
		wake:       make(chan struct{}, 1),
	}
	p.cond = sync.NewCond(&p.mu)
	p.metrics = resolveOptions(opts).metrics

	dq.JobsReady = func() {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		th := hostthread.New(name, priority)
		go func() {
			defer p.wg.Done()
			th.Run(p.processTasks)
		}()
	}

	p.wg.Add(1)
	go p.pump()

	return p
}

// NumWorkers reports the pool's fixed worker count.
func (p *DelayedPool) NumWorkers() int { return p.numWorkers }

// Pause toggles whether workers dequeue; posting is unaffected.
func (p *DelayedPool) Pause(paused bool) {
	v := int32(0)
	if paused {
		v = 1
	}
	atomic.StoreInt32(&p.paused, v)
	p.cond.Broadcast()
}

func (p *DelayedPool) isPaused() bool {
	return atomic.LoadInt32(&p.paused) != 0
}

// PostTask enqueues an immediately-eligible task. Dropped silently if
// the pool has already been terminated.
func (p *DelayedPool) PostTask(t Task) bool {
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

// PostDelayedTask schedules t for eligibility after delaySeconds.
// Dropped silently if the pool has already been terminated.
func (p *DelayedPool) PostDelayedTask(delaySeconds float64, t Task) bool {
	p.mu.Lock()
	if p.exiting {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	p.queue.PushItemDelayed(delaySeconds, t)
	if p.metrics != nil {
		p.metrics.RecordTaskPosted(p.service, p.name, "delayed")
	}
	return true
}

func (p *DelayedPool) pump() {
	defer p.wg.Done()
	ticker := time.NewTicker(pumpPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.wake:
		case <-ticker.C:
		}

		p.mu.Lock()
		exiting := p.exiting
		p.mu.Unlock()
		if exiting {
			return
		}

		p.queue.ProcessDelayedQueue()
		p.cond.Broadcast()
	}
}

func (p *DelayedPool) processTasks() {
	for {
		p.mu.Lock()
		for !p.exiting && (p.isPaused() || !p.queue.MayHaveItems()) {
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

// Terminate stops the pump and every worker, clears the queue, and
// blocks until all goroutines have joined.
func (p *DelayedPool) Terminate() {
	p.mu.Lock()
	if p.exiting {
		p.mu.Unlock()
		return
	}
	p.exiting = true
	p.queue = queue.NewDelayed[Task](queue.RealClock{})
	p.queue.Terminate()
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

package queue

import (
	"sort"
	"sync"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
)

// delayedEntry pairs a promotion deadline with its payload. Entries
// are kept sorted by Deadline so promotion only ever pops from the front.
type delayedEntry[T any] struct {
	Deadline float64
	Item     T
}

// Delayed wraps a FIFO with a time-ordered collection keyed by a
// monotonic-seconds deadline. ProcessDelayedQueue promotes everything
// whose deadline has passed into the inner FIFO.
type Delayed[T any] struct {
	*FIFO[T]

	clock Clock

	delayedMu  sync.Mutex
	delayed    []delayedEntry[T]
	terminated bool

	// JobsReady, if set, is invoked exactly once per ProcessDelayedQueue
	// call in which at least one entry was promoted, after both locks
	// have been released.
	JobsReady func()

	// OnNegativeDelay controls what happens when PushItemDelayed
	// receives delay < 0. The default (nil) clamps the delay to 0,
	// documented as this implementation's resolution of the spec's
	// open question on negative delays.
	OnNegativeDelay func(delay float64)
}

// NewDelayed creates an empty Delayed queue driven by clock.
func NewDelayed[T any](clock Clock) *Delayed[T] {
	return &Delayed[T]{FIFO: NewFIFO[T](), clock: clock}
}

// PushItemDelayed schedules item for promotion after delaySeconds.
// Negative delays are a usage error per §4.B; this implementation
// clamps to zero (immediate eligibility) rather than panicking,
// since the core runs the same binary in debug and release builds
// and silently dropping host-scheduled work would be worse than a
// clamp.
func (d *Delayed[T]) PushItemDelayed(delaySeconds float64, item T) {
	if delaySeconds < 0 {
		if d.OnNegativeDelay != nil {
			d.OnNegativeDelay(delaySeconds)
		}
		delaySeconds = 0
	}

	d.delayedMu.Lock()
	defer d.delayedMu.Unlock()
	if d.terminated {
		return
	}

	deadline := d.clock.MonotonicSeconds() + delaySeconds
	d.insertLocked(delayedEntry[T]{Deadline: deadline, Item: item})
}

func (d *Delayed[T]) insertLocked(e delayedEntry[T]) {
	idx := sort.Search(len(d.delayed), func(i int) bool {
		return d.delayed[i].Deadline > e.Deadline
	})
	d.delayed = append(d.delayed, delayedEntry[T]{})
	copy(d.delayed[idx+1:], d.delayed[idx:])
	d.delayed[idx] = e
}

// GetNextItem promotes any ready delayed items, then dequeues from the
// inner FIFO as normal.
func (d *Delayed[T]) GetNextItem() (T, bool) {
	d.ProcessDelayedQueue()
	return d.FIFO.GetNextItem()
}

// MayHaveItems promotes ready delayed items first, matching the
// source's GetNext/MayHaveItems pair both invoking promotion.
func (d *Delayed[T]) MayHaveItems() bool {
	d.ProcessDelayedQueue()
	return d.FIFO.MayHaveItems()
}

// ProcessDelayedQueue moves every entry whose deadline has elapsed
// into the inner FIFO, then fires JobsReady once if anything promoted.
func (d *Delayed[T]) ProcessDelayedQueue() {
	d.delayedMu.Lock()
	if d.terminated {
		d.delayedMu.Unlock()
		return
	}

	now := d.clock.MonotonicSeconds()
	promoted := 0
	for len(d.delayed) > 0 && d.delayed[0].Deadline <= now {
		item := d.delayed[0].Item
		d.delayed = d.delayed[1:]
		d.FIFO.PushItem(item)
		promoted++
	}
	d.delayedMu.Unlock()

	if promoted > 0 && d.JobsReady != nil {
		d.JobsReady()
	}
}

// DelayedLen reports the number of entries still awaiting promotion.
func (d *Delayed[T]) DelayedLen() int {
	d.delayedMu.Lock()
	defer d.delayedMu.Unlock()
	return len(d.delayed)
}

// Terminate stops both the delayed map and the inner FIFO from
// accepting further pushes.
func (d *Delayed[T]) Terminate() {
	d.delayedMu.Lock()
	d.terminated = true
	d.delayed = nil
	d.delayedMu.Unlock()
	d.FIFO.Terminate()
}

// PanicOnNegativeDelay is a ready-made OnNegativeDelay hook for
// callers that want the source's debug-build fatal behavior instead
// of this implementation's default release-style clamp.
func PanicOnNegativeDelay(delay float64) {
	panic(embederr.NegativeDelay(delay))
}

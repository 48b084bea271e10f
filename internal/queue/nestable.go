package queue

import "sync"

// Nestability tags whether a task is safe to run while another task's
// call stack is still on the thread.
type Nestability int

const (
	NestableTask Nestability = iota
	NonNestableTask
)

type nestableEntry[T any] struct {
	Nestability Nestability
	Task        T
}

// Nestable is a delayed queue of (Nestability, T) pairs. GetNext takes
// a nesting depth: NonNestable entries are skipped whenever depth != 0,
// without reordering the entries ahead of them.
type Nestable[T any] struct {
	inner *Delayed[nestableEntry[T]]
	mu    sync.Mutex
}

// NewNestable creates an empty Nestable queue driven by clock.
func NewNestable[T any](clock Clock) *Nestable[T] {
	return &Nestable[T]{inner: NewDelayed[nestableEntry[T]](clock)}
}

// PushItem enqueues a Nestable task.
func (n *Nestable[T]) PushItem(task T) {
	n.inner.PushItem(nestableEntry[T]{Nestability: NestableTask, Task: task})
}

// PushNonNestableItem enqueues a NonNestable task.
func (n *Nestable[T]) PushNonNestableItem(task T) {
	n.inner.PushItem(nestableEntry[T]{Nestability: NonNestableTask, Task: task})
}

// PushItemDelayed schedules a Nestable task for promotion after delaySeconds.
func (n *Nestable[T]) PushItemDelayed(delaySeconds float64, task T) {
	n.inner.PushItemDelayed(delaySeconds, nestableEntry[T]{Nestability: NestableTask, Task: task})
}

// PushNonNestableItemDelayed schedules a NonNestable task for
// promotion after delaySeconds.
func (n *Nestable[T]) PushNonNestableItemDelayed(delaySeconds float64, task T) {
	n.inner.PushItemDelayed(delaySeconds, nestableEntry[T]{Nestability: NonNestableTask, Task: task})
}

// GetNext scans the promoted FIFO from the head and removes the first
// entry that is Nestable, or any entry at all when depth == 0. Entries
// skipped over are left in place, preserving their relative order.
func (n *Nestable[T]) GetNext(depth int) (T, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.inner.ProcessDelayedQueue()

	var zero T
	n.inner.FIFO.mu.Lock()
	defer n.inner.FIFO.mu.Unlock()
	if n.inner.FIFO.terminated {
		return zero, false
	}

	items := n.inner.FIFO.items
	for i, e := range items {
		if depth == 0 || e.Nestability == NestableTask {
			n.inner.FIFO.items = append(items[:i:i], items[i+1:]...)
			return e.Task, true
		}
	}
	return zero, false
}

// MayHaveItems reports whether any entry (of either nestability) is
// currently queued, after promoting ready delayed entries.
func (n *Nestable[T]) MayHaveItems() bool {
	return n.inner.MayHaveItems()
}

// Len reports the total number of queued entries across both lanes.
func (n *Nestable[T]) Len() int {
	return n.inner.Len()
}

// Terminate stops the queue from accepting further pushes; GetNext
// returns nothing afterwards.
func (n *Nestable[T]) Terminate() {
	n.inner.Terminate()
}

// SetJobsReady installs the delayed-promotion callback.
func (n *Nestable[T]) SetJobsReady(fn func()) {
	n.inner.JobsReady = fn
}

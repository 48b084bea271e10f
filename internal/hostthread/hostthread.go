// Package hostthread wraps named OS threads with a priority class and
// exposes the hardware core count used to size worker pools.
package hostthread

import (
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Priority mirrors the embedded engine's thread priority classes.
type Priority int

const (
	Default Priority = iota
	BestEffort
	UserVisible
	UserBlocking
	MaxPriority = UserBlocking
)

// IntToPriority maps the engine's wire encoding of priority (0..3) to
// a Priority, defaulting anything out of range to BestEffort as §4.F
// specifies.
func IntToPriority(n int) Priority {
	switch n {
	case 0:
		return Default
	case 1:
		return BestEffort
	case 2:
		return UserVisible
	case 3:
		return UserBlocking
	default:
		return BestEffort
	}
}

// PriorityToInt inverts IntToPriority for the three non-default classes.
func PriorityToInt(p Priority) int {
	switch p {
	case BestEffort:
		return 1
	case UserVisible:
		return 2
	case UserBlocking:
		return 3
	default:
		return 0
	}
}

var nextThreadID int64

// Thread is a named OS-level worker thread. Run locks the calling
// goroutine to its OS thread for the duration of fn, matching the
// one-goroutine-per-worker model the thread pools rely on.
type Thread struct {
	ID       int64
	Name     string
	Priority Priority
}

// New allocates a Thread identity; it does not start any goroutine.
func New(name string, priority Priority) *Thread {
	return &Thread{
		ID:       atomic.AddInt64(&nextThreadID, 1),
		Name:     name,
		Priority: priority,
	}
}

// Run locks the current goroutine to its OS thread, applies the best
// effort native priority, runs fn, then restores the thread for reuse
// by the Go scheduler.
func (t *Thread) Run(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	applyPriority(t.Priority)
	fn()
}

// HardwareCores returns the number of logical cores available to the
// process, preferring gopsutil's accounting (which reflects container
// cgroup limits) and falling back to runtime.NumCPU on error.
func HardwareCores() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// ClampWorkerCount applies the §4.D construction rule: negative
// requests use the hardware core count, zero clamps to 1, positive
// requests clamp to at most the hardware core count.
func ClampWorkerCount(requested int) int {
	cores := HardwareCores()
	switch {
	case requested < 0:
		return cores
	case requested == 0:
		return 1
	case requested > cores:
		return cores
	default:
		return requested
	}
}

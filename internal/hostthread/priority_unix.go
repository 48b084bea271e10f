//go:build unix

package hostthread

import "golang.org/x/sys/unix"

// applyPriority makes a best-effort attempt to nice the calling OS
// thread. Failures are silently ignored: priority is an optimization
// hint, not a correctness requirement, and an unprivileged process may
// not be permitted to raise it.
func applyPriority(p Priority) {
	nice := priorityToNice(p)
	_ = unix.Setpriority(unix.PRIO_PROCESS, 0, nice)
}

func priorityToNice(p Priority) int {
	switch p {
	case UserBlocking:
		return -5
	case UserVisible:
		return 0
	case BestEffort:
		return 10
	default:
		return 0
	}
}

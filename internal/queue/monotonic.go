package queue

import "time"

var processStart = time.Now()

// monotonicSeconds returns seconds elapsed since process start, backed
// by time.Since which always reads the runtime's monotonic clock
// reading embedded in time.Time values.
func monotonicSeconds() float64 {
	return time.Since(processStart).Seconds()
}

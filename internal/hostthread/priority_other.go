//go:build !unix

package hostthread

// applyPriority is a no-op on platforms without a POSIX nice-value API.
func applyPriority(p Priority) {}

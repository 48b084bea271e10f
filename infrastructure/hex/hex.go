// Package hex renders small byte-buffer prefixes as hex for log lines
// and error messages, without dumping multi-megabyte snapshot or
// module payloads wholesale.
package hex

import "encoding/hex"

// DumpPrefix renders up to maxBytes of data as a hex string, appending
// an ellipsis marker if data was truncated. Used by the byte-buffer and
// snapshot packages when logging a read/write failure.
func DumpPrefix(data []byte, maxBytes int) string {
	if maxBytes <= 0 || maxBytes > len(data) {
		maxBytes = len(data)
	}
	out := hex.EncodeToString(data[:maxBytes])
	if maxBytes < len(data) {
		out += "..."
	}
	return out
}

// EncodeToString is a thin re-export of encoding/hex.EncodeToString so
// callers needn't import both packages under different names.
func EncodeToString(data []byte) string {
	return hex.EncodeToString(data)
}

// Package embederr provides unified error handling for the embedding
// runtime core, structured around the four error kinds the runtime
// distinguishes: usage, validation, serialization, and resource errors.
package embederr

import (
	"errors"
	"fmt"
)

// Kind classifies a runtime error along the lines the core's error
// handling design uses to decide how a failure propagates.
type Kind string

const (
	// KindUsage marks an invariant violated by the caller: negative
	// delay, double-init, an unbound object passed to a member
	// callback. Fatal in debug builds, implementation-defined in release.
	KindUsage Kind = "usage"

	// KindValidation marks input that fails a documented precondition:
	// malformed semver, an escaping path, a missing root directory, an
	// unrecognized attribute value. Surfaced as a logged warning plus
	// an empty/typed result.
	KindValidation Kind = "validation"

	// KindSerialization marks an under/over-read, a const-target write,
	// or an unrecognized type tag on the byte-buffer codec. Sets the
	// buffer's sticky error; downstream codec calls become no-ops.
	KindSerialization Kind = "serialization"

	// KindResource marks a file-open/read failure or a task posted
	// after shutdown. Posts drop silently; file I/O reports false/error.
	KindResource Kind = "resource"
)

// Error is a structured runtime error carrying a Kind, a message, an
// optional wrapped cause, and free-form details for logging.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches a key/value pair for structured log output.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps an existing error with a classified Error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is an *Error of the given kind, walking the
// unwrap chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Usage errors.

func Usage(message string) *Error {
	return New(KindUsage, message)
}

func NegativeDelay(delay float64) *Error {
	return New(KindUsage, "delay must not be negative").WithDetails("delay", delay)
}

func DoubleInit(what string) *Error {
	return New(KindUsage, "already initialized").WithDetails("target", what)
}

func UnboundCallback(what string) *Error {
	return New(KindUsage, "callback target has been released").WithDetails("target", what)
}

// Validation errors.

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func InvalidSemver(raw string) *Error {
	return New(KindValidation, "invalid semantic version").WithDetails("raw", raw)
}

func PathEscapesRoot(path string) *Error {
	return New(KindValidation, "path escapes application root").WithDetails("path", path)
}

func MissingRootDir(name string) *Error {
	return New(KindValidation, "application root is missing a required directory").WithDetails("dir", name)
}

func InvalidAttribute(key, value string) *Error {
	return New(KindValidation, "invalid module attribute").WithDetails("key", key).WithDetails("value", value)
}

// Serialization errors.

func Serialization(message string) *Error {
	return New(KindSerialization, message)
}

func ShortRead(want, got int) *Error {
	return New(KindSerialization, "buffer under-read").WithDetails("want", want).WithDetails("got", got)
}

func ConstWrite() *Error {
	return New(KindSerialization, "write attempted on a reader-mode buffer")
}

func UnknownTypeTag(tag string) *Error {
	return New(KindSerialization, "unrecognized snapshot type tag").WithDetails("tag", tag)
}

// Resource errors.

func Resource(message string) *Error {
	return New(KindResource, message)
}

func PostAfterShutdown() *Error {
	return New(KindResource, "task posted after shutdown")
}

func FileIO(op, path string, err error) *Error {
	return Wrap(KindResource, fmt.Sprintf("file %s failed", op), err).WithDetails("path", path)
}

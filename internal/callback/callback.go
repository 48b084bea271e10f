// Package callback implements the polymorphic callback wrapper (§4.I):
// a single value type that holds a free function, a bound method, a
// lambda-style closure, or a generic function-object, and reports a
// stable identity for equality regardless of which shape it wraps.
//
// Go's first-class function values already collapse "free function",
// "static member function", and "lambda" into one representation
// (func(...)); what the source's template specialization explosion
// bought in C++ is modeled here as a tagged union over four kinds
// whose identities come from two sources: a plain func value, whose
// identity is its code pointer, and the bound closure over a receiver (the "member function invoked through a
// weak reference" case in §9's back-reference design note), whose
// identity is a stable hash over caller-supplied identity bytes since
// a bound closure's code pointer is not guaranteed stable across
// copies.
package callback

import (
	"reflect"

	"golang.org/x/crypto/blake2b"

	"github.com/R3E-Network/embedcore/infrastructure/embederr"
)

// Kind classifies the callable shape a Wrapper holds.
type Kind int

const (
	// KindFunc wraps a free function, a static member function, or a
	// lambda with no captured receiver — anything Go represents as a
	// plain func value with a stable code pointer.
	KindFunc Kind = iota
	// KindMember wraps a method bound to a receiver, invoked through a
	// WeakTarget that must be upgraded at call time.
	KindMember
	// KindLambda wraps a closure with captured state; treated like
	// KindFunc for invocation but reports IsLambda true.
	KindLambda
	// KindFunctionObject wraps a generic callable value (anything
	// satisfying an invoke-style interface) rather than a bare func.
	KindFunctionObject
)

// WeakTarget resolves to the live receiver a bound-member Wrapper
// should invoke against, or ok=false once the target has been torn
// down. This is the upgrade step §9 requires for the isolate/runtime
// back-reference pattern: tasks capture a weak reference and only pay
// for a strong upgrade at invocation time.
type WeakTarget func() (receiver any, ok bool)

// Func is the uniform invocation signature every Wrapper normalizes
// to: a single any-typed argument list in, a single any-typed result
// (nil for void) and an error out.
type Func func(args ...any) (any, error)

// Wrapper is a type-preserving, copyable value wrapping one callable.
// The zero Wrapper is not usable; construct one with Of, OfLambda,
// OfMember, or OfFunctionObject.
type Wrapper struct {
	kind       Kind
	voidReturn bool
	call       Func
	target     WeakTarget
	codePtr    uintptr
	identity   [blake2b.Size256]byte
	hasIdent   bool
}

// Of wraps a free function, static member function, or capture-free
// lambda. fn's reflect code pointer is the wrapper's identity.
func Of(fn Func, voidReturn bool) Wrapper {
	return Wrapper{
		kind:       KindFunc,
		voidReturn: voidReturn,
		call:       fn,
		codePtr:    reflect.ValueOf(fn).Pointer(),
	}
}

// OfLambda wraps a closure with captured state. Per §4.I restricting
// lambdas to "trivially copyable captures", callers must ensure fn's
// captured state is itself copy-safe (no mutex, no owning handle);
// this package does not and cannot enforce that in Go. identitySeed
// disambiguates lambdas whose code pointer is shared (closures over
// the same function literal compile to one code pointer in Go) — pass
// bytes unique to this particular closure instance, e.g. a counter or
// the captured key.
func OfLambda(fn Func, voidReturn bool, identitySeed []byte) Wrapper {
	w := Wrapper{
		kind:       KindLambda,
		voidReturn: voidReturn,
		call:       fn,
		codePtr:    reflect.ValueOf(fn).Pointer(),
	}
	if len(identitySeed) > 0 {
		w.identity = blake2b.Sum256(identitySeed)
		w.hasIdent = true
	}
	return w
}

// OfMember wraps a method bound to a receiver reached only through
// target, upgraded at call time. identitySeed seeds the stable hash
// identity (typically the method name plus a receiver type tag).
func OfMember(call Func, voidReturn bool, target WeakTarget, identitySeed []byte) Wrapper {
	return Wrapper{
		kind:       KindMember,
		voidReturn: voidReturn,
		call:       call,
		target:     target,
		identity:   blake2b.Sum256(identitySeed),
		hasIdent:   true,
	}
}

// OfFunctionObject wraps a generic callable value that is not a bare
// Go func (for example a value satisfying a project-local Invoker
// interface). identitySeed seeds the stable hash identity.
func OfFunctionObject(call Func, voidReturn bool, identitySeed []byte) Wrapper {
	return Wrapper{
		kind:       KindFunctionObject,
		voidReturn: voidReturn,
		call:       call,
		identity:   blake2b.Sum256(identitySeed),
		hasIdent:   true,
	}
}

// IsMember reports whether this wrapper invokes through a weak target
// upgrade.
func (w Wrapper) IsMember() bool { return w.kind == KindMember }

// IsLambda reports whether this wrapper holds a captured closure.
func (w Wrapper) IsLambda() bool { return w.kind == KindLambda }

// IsFunctionObject reports whether this wrapper holds a generic
// callable value rather than a bare func or bound method.
func (w Wrapper) IsFunctionObject() bool { return w.kind == KindFunctionObject }

// IsVoidReturn reports whether the wrapped callable's result is void
// (ignored by callers rather than propagated).
func (w Wrapper) IsVoidReturn() bool { return w.voidReturn }

// Identity returns a value stable across copies of this Wrapper,
// suitable for equality checks and as an externalref.Ref. Free
// functions and capture-free lambdas use their code pointer;
// bound-member, captured-lambda, and function-object wrappers use the
// BLAKE2b-256 identity hash seeded at construction.
func (w Wrapper) Identity() uintptr {
	if w.hasIdent {
		// Fold the 32-byte hash into a pointer-sized identity the same
		// way externalref.Ref expects: XOR its four 8-byte words
		// together into one word.
		var folded uintptr
		for i, b := range w.identity {
			folded ^= uintptr(b) << uint((i%8)*8)
		}
		return folded
	}
	return w.codePtr
}

// Invoke calls the wrapped callable, upgrading the weak target first
// for KindMember wrappers. Returns embederr.UnboundCallback if the
// target has been released.
func (w Wrapper) Invoke(args ...any) (any, error) {
	if w.kind == KindMember {
		receiver, ok := w.target()
		if !ok {
			return nil, embederr.UnboundCallback("member callback target released")
		}
		return w.call(append([]any{receiver}, args...)...)
	}
	return w.call(args...)
}

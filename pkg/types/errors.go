package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat       ErrKind = iota // malformed input (e.g., a version string)
	ErrKindNotFound                    // missing key/value/path
	ErrKindNotSupported                // unrecognised scope or other invalid selector
	ErrKindStore                       // any other backend failure; carries a native code
	ErrKindState                       // invalid operation for current state (e.g., closed key)
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindNotFound:
		return "not found"
	case ErrKindNotSupported:
		return "not supported"
	case ErrKindStore:
		return "store"
	case ErrKindState:
		return "state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
//
// Code holds the backend's native error code for ErrKindStore errors (for
// example a Win32 error number) and is zero otherwise.
type Error struct {
	Kind ErrKind
	Msg  string
	Code uint32
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Kind == ErrKindStore && e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrNotFound) matches every not-found error regardless of
// message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrFormat indicates text that does not parse (e.g., "1.2.3.4.5").
	ErrFormat = &Error{Kind: ErrKindFormat, Msg: "invalid format"}
	// ErrNotFound indicates a missing key/value/path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrNotSupported indicates an unrecognised selector such as a scope name.
	ErrNotSupported = &Error{Kind: ErrKindNotSupported, Msg: "not supported"}
	// ErrStore matches any backend failure that is not a not-found.
	ErrStore = &Error{Kind: ErrKindStore, Msg: "store error"}
	// ErrClosed indicates use of a key handle after Close.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "key is closed"}
)

// NotFound builds a not-found error naming what was missing.
func NotFound(what string) error {
	return &Error{Kind: ErrKindNotFound, Msg: what + " not found"}
}

// FormatError builds a format error describing the rejected input.
func FormatError(msg string, cause error) error {
	return &Error{Kind: ErrKindFormat, Msg: msg, Err: cause}
}

// StoreError wraps a backend failure, keeping its native code for diagnostics.
func StoreError(op string, code uint32, cause error) error {
	return &Error{Kind: ErrKindStore, Msg: op, Code: code, Err: cause}
}

// StateError reports an operation that is invalid for the current state.
func StateError(msg string) error {
	return &Error{Kind: ErrKindState, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}

package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors of the codec. Every failure returned by this module wraps
// exactly one of them.
var (
	// ErrInput is returned for arguments that cannot be processed, such as
	// a value of an unknown concrete type.
	ErrInput = Register(2, "invalid input")

	// ErrEmpty is returned when a required value has no content.
	ErrEmpty = Register(3, "value is empty")

	// ErrNotFound is returned when a lookup by address or hash has no match.
	ErrNotFound = Register(4, "not found")

	// ErrOverflow is returned when a number does not fit its wire field.
	ErrOverflow = Register(5, "an operation cannot be completed due to value overflow")

	// ErrFormat is returned for a byte stream that does not follow the
	// signature encoding.
	ErrFormat = Register(6, "malformed encoding")

	// ErrInvalidSignature is returned when a signature part does not
	// approve the signed subdigest.
	ErrInvalidSignature = Register(7, "invalid signature")

	// ErrConfig is returned for a wallet configuration with a zero or
	// unreachable threshold.
	ErrConfig = Register(8, "invalid configuration")

	// ErrCheckpoint is returned when chained configurations are not
	// ordered by a strictly decreasing checkpoint.
	ErrCheckpoint = Register(9, "invalid checkpoint order")

	// ErrUnsupported is returned for a signature type or flavour this
	// module does not process.
	ErrUnsupported = Register(10, "unsupported")

	// ErrHuman marks a code path that must never be taken.
	ErrHuman = Register(11, "coding error")

	// ErrPanic wraps the value of a recovered panic.
	ErrPanic = Register(111222, "panic")
)

// registry holds every code handed out by Register. Code 1 stays reserved
// for errors that do not originate from this package.
var registry = map[uint32]*Error{
	1: nil,
}

// Register declares a new root error. It panics when code is taken, so it
// must only be called from package level variable declarations.
func Register(code uint32, description string) *Error {
	if prev, taken := registry[code]; taken {
		if prev == nil {
			panic(fmt.Sprintf("error code %d is reserved", code))
		}
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// Error is a root error. Runtime errors are created by wrapping it, so that
// Is can classify them no matter how many layers were added on the way up.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code is the number e was registered with.
func (e Error) Code() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is a shortcut for Wrapf(e, format, args...).
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is reports whether err is e or wraps e. Both Cause and Unwrap chains are
// followed. A nil e matches only nil errors, including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNil(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		err = parentOf(err)
	}
	return false
}

func isNil(err error) bool {
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// parentOf returns the error directly wrapped by err, or nil.
func parentOf(err error) error {
	switch w := err.(type) {
	case causer:
		return w.Cause()
	case interface{ Unwrap() error }:
		return w.Unwrap()
	}
	return nil
}

// Wrap adds description to err. A nil err gives nil, so the result of a
// call can be wrapped directly in a return statement.
//
// The innermost Wrap records the stack. Outer layers only add text.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithType wraps err with the Go type name of obj. It is used to report a
// value whose concrete type is not handled.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// Recover turns a panic into an ErrPanic assigned to err. It has to be
// called with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Unwrap allows the standard library errors.Is and errors.As to walk the
// chain.
func (e *wrappedError) Unwrap() error {
	return e.parent
}

// causer is implemented by pkg/errors wrappers and by wrappedError.
type causer interface {
	Cause() error
}

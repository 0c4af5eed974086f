package darknet

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the errors returned by this package
type Kind int

// error kinds, everything else is handled by darknet terminating the process
const (
	// MarshalError is text that can not be represented as a C string
	MarshalError Kind = iota + 1
	// LoadError is a native load call that returned a null handle
	LoadError
	// InvalidArgument is a precondition checked before calling into darknet
	InvalidArgument
)

// String returns a readable description of the error kind
func (k Kind) String() string {
	switch k {
	case MarshalError:
		return "text not representable as a C string"
	case LoadError:
		return "native load failed"
	case InvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error lets a Kind be used as the target of errors.Is
func (k Kind) Error() string {
	return k.String()
}

// ErrClosed is the cause of errors returned when operating on a handle that
// has already been released
var ErrClosed = errors.New("handle has been closed")

// Error is the error type returned by every operation in this package
type Error struct {
	// Kind of failure
	Kind Kind
	// Op is the operation that failed, eg: "LoadNetwork"
	Op string
	// Err is the underlying cause
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is the Kind of this error
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of err, or 0 when err did not come from this package
func KindOf(err error) Kind {
	var e *Error

	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsMarshalError reports whether err is a MarshalError
func IsMarshalError(err error) bool {
	return errors.Is(err, MarshalError)
}

// IsLoadError reports whether err is a LoadError
func IsLoadError(err error) bool {
	return errors.Is(err, LoadError)
}

// IsInvalidArgument reports whether err is an InvalidArgument
func IsInvalidArgument(err error) bool {
	return errors.Is(err, InvalidArgument)
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func invalidArgf(op, format string, args ...interface{}) *Error {
	return newError(InvalidArgument, op, errors.Errorf(format, args...))
}

func closedError(op string) *Error {
	return newError(InvalidArgument, op, ErrClosed)
}

package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidConfig
	KindInputNotFound
	KindProbeFailure
	KindDecodeFailure
	KindWriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidConfig:
		return "invalid configuration"
	case KindInputNotFound:
		return "input not found"
	case KindProbeFailure:
		return "probe failure"
	case KindDecodeFailure:
		return "decode failure"
	case KindWriteFailure:
		return "write failure"
	default:
		return "unknown failure"
	}
}

// Error is returned by every pipeline stage
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &pipeline.Error{Kind: pipeline.KindDecodeFailure}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of a pipeline error, or KindUnknown
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

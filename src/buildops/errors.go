package buildops

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure of a façade operation.
type Kind int

const (
	KindAPI Kind = iota
	KindInvalidArgument
	KindJobNotFound
	KindBuildNotFound
	KindConnection
	KindTimeout
)

// String returns the label used when rendering errors to users.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "Invalid argument"
	case KindJobNotFound:
		return "Job not found"
	case KindBuildNotFound:
		return "Build not found"
	case KindConnection:
		return "Connection error"
	case KindTimeout:
		return "Timeout"
	default:
		return "Jenkins API error"
	}
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrJobNotFound     = errors.New("job not found")
	ErrBuildNotFound   = errors.New("build not found")
	ErrConnection      = errors.New("connection failure")
	ErrTimeout         = errors.New("timed out")
	ErrAPI             = errors.New("jenkins api error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindJobNotFound:
		return ErrJobNotFound
	case KindBuildNotFound:
		return ErrBuildNotFound
	case KindConnection:
		return ErrConnection
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrAPI
	}
}

// Error is the only error type returned by Service operations.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Hint    string
	// Elapsed is the wait bound for KindTimeout.
	Elapsed time.Duration
	Err     error
}

func (e *Error) Error() string {
	msg := e.Detail()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

// Detail is the message without the operation prefix, including the cause.
// Not-found messages already say everything the cause does.
func (e *Error) Detail() string {
	msg := e.Message
	notFound := e.Kind == KindJobNotFound || e.Kind == KindBuildNotFound
	if e.Err != nil && !(notFound && msg != "") {
		if msg == "" {
			return e.Err.Error()
		}
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind, so errors.Is(err, ErrTimeout) works.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err, or KindAPI for errors not produced here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindAPI
}

func invalidArgument(op, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

func noBuilds(op, job string) *Error {
	return &Error{
		Kind:    KindBuildNotFound,
		Op:      op,
		Message: fmt.Sprintf("no builds found for job '%s'", job),
		Hint:    "Trigger the job with run-job first, or pass an explicit build_number.",
	}
}

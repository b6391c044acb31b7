package jenkins

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrConnection wraps transport failures (refused connections, DNS, timeouts).
	ErrConnection = errors.New("connection error")
)

// NotFoundError reports a 404 for a job, or for a build when Build > 0.
type NotFoundError struct {
	Job   string
	Build int
}

func (e *NotFoundError) Error() string {
	if e.Build > 0 {
		return fmt.Sprintf("job[%s] number[%d] does not exist", e.Job, e.Build)
	}
	return fmt.Sprintf("job[%s] does not exist", e.Job)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// APIError is a non-success HTTP response that is not a known not-found.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	switch e.StatusCode {
	case 401:
		msg += " (authentication failed)"
	case 403:
		msg += " (permission denied)"
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

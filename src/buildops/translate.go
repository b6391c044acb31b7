package buildops

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"jenkins-mcp/src/jenkins"
)

// translate classifies a client failure into an *Error. Structured checks run
// first; the substring checks cover clients that only report text.
// build is the build number the failing call concerned, or 0 for job-scoped calls.
func translate(op, job string, build int, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}

	var nf *jenkins.NotFoundError
	if errors.As(err, &nf) {
		if nf.Build > 0 {
			return buildNotFound(op, nf.Job, nf.Build, err)
		}
		return jobNotFound(op, nf.Job, err)
	}

	if errors.Is(err, jenkins.ErrConnection) || isNetTimeout(err) {
		return connectionFailure(op, job, err)
	}

	var apiErr *jenkins.APIError
	if errors.As(err, &apiErr) {
		e := &Error{Kind: KindAPI, Op: op, Message: scoped(op, job), Err: err}
		switch apiErr.StatusCode {
		case 401, 403:
			e.Hint = "Check JENKINS_USERNAME and JENKINS_PASSWORD, and that the user may access this job."
		}
		return e
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "does not exist"), strings.Contains(msg, "not found"):
		if build > 0 && (strings.Contains(msg, "number[") || strings.Contains(msg, "build")) {
			return buildNotFound(op, job, build, err)
		}
		return jobNotFound(op, job, err)
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
		return connectionFailure(op, job, err)
	}

	return &Error{Kind: KindAPI, Op: op, Message: scoped(op, job), Err: err}
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func scoped(op, job string) string {
	if job == "" {
		return "failed to " + op
	}
	return fmt.Sprintf("failed to %s for job '%s'", op, job)
}

func jobNotFound(op, job string, err error) *Error {
	return &Error{
		Kind:    KindJobNotFound,
		Op:      op,
		Message: fmt.Sprintf("Job '%s' does not exist", job),
		Hint:    "Use get-jobs to list available jobs; folder jobs are addressed as folder/job.",
		Err:     err,
	}
}

func buildNotFound(op, job string, build int, err error) *Error {
	return &Error{
		Kind:    KindBuildNotFound,
		Op:      op,
		Message: fmt.Sprintf("Build #%d of job '%s' does not exist", build, job),
		Err:     err,
	}
}

func connectionFailure(op, job string, err error) *Error {
	return &Error{
		Kind:    KindConnection,
		Op:      op,
		Message: scoped(op, job),
		Hint:    "Check JENKINS_URL and that the Jenkins server is reachable.",
		Err:     err,
	}
}

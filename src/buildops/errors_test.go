package buildops

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jenkins-mcp/src/jenkins"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o deadline reached" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		build    int
		err      error
		wantKind Kind
		wantSent error
	}{
		{
			name:     "structured job not found",
			err:      &jenkins.NotFoundError{Job: "a"},
			wantKind: KindJobNotFound,
			wantSent: ErrJobNotFound,
		},
		{
			name:     "structured build not found",
			build:    4,
			err:      &jenkins.NotFoundError{Job: "a", Build: 4},
			wantKind: KindBuildNotFound,
			wantSent: ErrBuildNotFound,
		},
		{
			name:     "wrapped connection error",
			err:      fmt.Errorf("%w: GET http://x: dial tcp: refused", jenkins.ErrConnection),
			wantKind: KindConnection,
			wantSent: ErrConnection,
		},
		{
			name:     "net timeout",
			err:      fmt.Errorf("request: %w", timeoutError{}),
			wantKind: KindConnection,
			wantSent: ErrConnection,
		},
		{
			name:     "server error",
			err:      &jenkins.APIError{StatusCode: 500, Method: "GET", URL: "http://x"},
			wantKind: KindAPI,
			wantSent: ErrAPI,
		},
		{
			name:     "text build not found",
			build:    3,
			err:      errors.New("job[a] number[3] does not exist"),
			wantKind: KindBuildNotFound,
			wantSent: ErrBuildNotFound,
		},
		{
			name:     "text job not found",
			err:      errors.New("Requested item Not Found"),
			wantKind: KindJobNotFound,
			wantSent: ErrJobNotFound,
		},
		{
			name:     "text job not found on build-scoped call",
			build:    3,
			err:      errors.New("job[a] does not exist"),
			wantKind: KindJobNotFound,
			wantSent: ErrJobNotFound,
		},
		{
			name:     "text connection",
			err:      errors.New("Connection refused by peer"),
			wantKind: KindConnection,
			wantSent: ErrConnection,
		},
		{
			name:     "text timeout",
			err:      errors.New("read TIMEOUT"),
			wantKind: KindConnection,
			wantSent: ErrConnection,
		},
		{
			name:     "context cancelled",
			err:      context.Canceled,
			wantKind: KindAPI,
			wantSent: ErrAPI,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			wantKind: KindAPI,
			wantSent: ErrAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate("get console", "a", tt.build, tt.err)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.ErrorIs(t, err, tt.wantSent)
			assert.ErrorIs(t, err, tt.err, "cause must stay reachable")
		})
	}
}

func TestTranslate_Passthrough(t *testing.T) {
	assert.NoError(t, translate("op", "a", 0, nil))

	orig := invalidArgument("op", "bad")
	assert.Same(t, orig, translate("other", "a", 0, orig))
}

func TestTranslate_AuthHint(t *testing.T) {
	err := translate("get job info", "a", 0, &jenkins.APIError{StatusCode: 401})

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Hint, "JENKINS_USERNAME")
}

func TestError_Messages(t *testing.T) {
	nf := &jenkins.NotFoundError{Job: "a"}
	e := jobNotFound("get console", "a", nf)
	assert.Equal(t, "get console: Job 'a' does not exist", e.Error())
	assert.ErrorIs(t, e, jenkins.ErrNotFound)

	api := &Error{Kind: KindAPI, Op: "list jobs", Message: "failed to list jobs", Err: errors.New("boom")}
	assert.Equal(t, "failed to list jobs: boom", api.Detail())
	assert.Equal(t, "list jobs: failed to list jobs: boom", api.Error())

	bare := &Error{Kind: KindAPI, Err: errors.New("boom")}
	assert.Equal(t, "boom", bare.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAPI, KindOf(errors.New("x")))
	assert.Equal(t, KindTimeout, KindOf(fmt.Errorf("wrapped: %w", &Error{Kind: KindTimeout, Elapsed: time.Second})))
	assert.Equal(t, "Job not found", KindJobNotFound.String())
	assert.Equal(t, "Jenkins API error", KindAPI.String())
}

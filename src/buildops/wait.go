package buildops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jenkins-mcp/src/metrics"
)

const (
	DefaultWaitTimeout  = time.Hour
	DefaultPollInterval = 30 * time.Second
)

// Wait polls the build until it has a result or timeout elapses.
// pollInterval is clamped to timeout. The deadline is checked before every
// status fetch against time since the loop started, so slow calls count.
// Status errors end the wait; only "still running" is re-polled.
func (s *Service) Wait(ctx context.Context, job string, build *int, timeout, pollInterval time.Duration) (*WaitResult, error) {
	const op = "wait for build"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, invalidArgument(op, "timeout must be positive, got %s", timeout)
	}
	if pollInterval <= 0 {
		return nil, invalidArgument(op, "poll_interval must be positive, got %s", pollInterval)
	}
	if pollInterval > timeout {
		pollInterval = timeout
	}

	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()
	for polls := 0; ; {
		elapsed := s.clock.Since(start)
		if elapsed >= timeout {
			metrics.IncreaseBuildWaits("timeout")
			return nil, &Error{
				Kind:    KindTimeout,
				Op:      op,
				Message: fmt.Sprintf("build #%d of job '%s' did not finish within %s", number, job, timeout),
				Elapsed: timeout,
			}
		}

		st, err := s.status(ctx, op, job, number)
		if err != nil {
			return nil, err
		}
		polls++

		if st.Terminal() {
			metrics.IncreaseBuildWaits(strings.ToLower(st.Result))
			elapsed = s.clock.Since(start)
			return &WaitResult{
				Job:            job,
				BuildNumber:    number,
				Result:         st.Result,
				DurationMS:     st.DurationMS,
				URL:            st.URL,
				Elapsed:        elapsed,
				ElapsedSeconds: elapsed.Seconds(),
				Polls:          polls,
			}, nil
		}

		s.log.Debug("build %s #%d still running after %s, next poll in %s", job, number, elapsed, pollInterval)

		select {
		case <-ctx.Done():
			return nil, &Error{
				Kind:    KindAPI,
				Op:      op,
				Message: fmt.Sprintf("wait for build #%d of job '%s' was cancelled", number, job),
				Err:     ctx.Err(),
			}
		case <-s.clock.After(pollInterval):
		}
	}
}

package buildops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jenkins-mcp/src/jenkins"
)

type waitOutcome struct {
	res *WaitResult
	err error
}

// startWait runs Wait in the background against a running build app #3.
func startWait(t *testing.T, fc *fakeClient, clock *clockwork.FakeClock, ctx context.Context, timeout, poll time.Duration) <-chan waitOutcome {
	t.Helper()
	svc := NewService(fc, WithClock(clock))
	done := make(chan waitOutcome, 1)
	go func() {
		res, err := svc.Wait(ctx, "app", nil, timeout, poll)
		done <- waitOutcome{res: res, err: err}
	}()
	return done
}

func newWaitFixture() *fakeClient {
	fc := newFakeClient()
	fc.addJob("app", 3)
	fc.addBuild("app", &jenkins.Build{Number: 3, Building: true, URL: "http://jenkins/job/app/3/"})
	return fc
}

// finishAfter makes the build terminal on the given GetBuild call.
func finishAfter(fc *fakeClient, call int, result string) {
	n := 0
	fc.onGetBuild = func(job string, number int) {
		n++
		if n == call {
			fc.mu.Lock()
			fc.builds[buildKey(job, number)] = &jenkins.Build{Number: number, Result: result, Duration: 4200, URL: "http://jenkins/job/app/3/"}
			fc.mu.Unlock()
		}
	}
}

func blockAndAdvance(t *testing.T, clock *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1), "wait loop never slept")
	clock.Advance(d)
}

func receive(t *testing.T, done <-chan waitOutcome) waitOutcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
		return waitOutcome{}
	}
}

func TestWait_ReturnsTerminalSnapshot(t *testing.T) {
	fc := newWaitFixture()
	finishAfter(fc, 3, "FAILURE")
	clock := clockwork.NewFakeClock()

	done := startWait(t, fc, clock, context.Background(), time.Minute, 10*time.Second)
	blockAndAdvance(t, clock, 10*time.Second)
	blockAndAdvance(t, clock, 10*time.Second)

	out := receive(t, done)
	require.NoError(t, out.err)
	assert.Equal(t, 3, out.res.BuildNumber)
	assert.Equal(t, "FAILURE", out.res.Result, "a failed build is a terminal result, not an error")
	assert.Equal(t, int64(4200), out.res.DurationMS)
	assert.Equal(t, "http://jenkins/job/app/3/", out.res.URL)
	assert.Equal(t, 3, out.res.Polls)
	assert.Equal(t, 20*time.Second, out.res.Elapsed)
}

func TestWait_AlreadyFinished(t *testing.T) {
	fc := newWaitFixture()
	fc.addBuild("app", &jenkins.Build{Number: 3, Result: "SUCCESS"})
	clock := clockwork.NewFakeClock()

	out := receive(t, startWait(t, fc, clock, context.Background(), time.Minute, time.Second))
	require.NoError(t, out.err)
	assert.Equal(t, "SUCCESS", out.res.Result)
	assert.Equal(t, 1, out.res.Polls)
}

func TestWait_Timeout(t *testing.T) {
	fc := newWaitFixture()
	clock := clockwork.NewFakeClock()

	done := startWait(t, fc, clock, context.Background(), 25*time.Second, 10*time.Second)
	for i := 0; i < 3; i++ {
		blockAndAdvance(t, clock, 10*time.Second)
	}

	out := receive(t, done)
	require.ErrorIs(t, out.err, ErrTimeout)
	var e *Error
	require.ErrorAs(t, out.err, &e)
	assert.Equal(t, 25*time.Second, e.Elapsed)
	assert.Equal(t, 3, fc.callCount("GetBuild"))
}

func TestWait_PollIntervalClampedToTimeout(t *testing.T) {
	run := func(poll time.Duration) (int, error) {
		fc := newWaitFixture()
		clock := clockwork.NewFakeClock()
		done := startWait(t, fc, clock, context.Background(), 5*time.Second, poll)
		blockAndAdvance(t, clock, 5*time.Second)
		out := receive(t, done)
		return fc.callCount("GetBuild"), out.err
	}

	clampedCalls, clampedErr := run(60 * time.Second)
	equalCalls, equalErr := run(5 * time.Second)

	assert.Equal(t, 1, clampedCalls)
	assert.Equal(t, equalCalls, clampedCalls)
	assert.ErrorIs(t, clampedErr, ErrTimeout)
	assert.ErrorIs(t, equalErr, ErrTimeout)
}

func TestWait_SlowStatusCallsCountAgainstTimeout(t *testing.T) {
	fc := newWaitFixture()
	clock := clockwork.NewFakeClock()
	fc.onGetBuild = func(string, int) {
		clock.Advance(25 * time.Second)
	}

	done := startWait(t, fc, clock, context.Background(), 30*time.Second, 10*time.Second)
	blockAndAdvance(t, clock, 10*time.Second)

	out := receive(t, done)
	assert.ErrorIs(t, out.err, ErrTimeout)
	assert.Equal(t, 1, fc.callCount("GetBuild"))
}

func TestWait_Cancelled(t *testing.T) {
	fc := newWaitFixture()
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	done := startWait(t, fc, clock, ctx, time.Hour, time.Minute)
	bctx, bcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer bcancel()
	require.NoError(t, clock.BlockUntilContext(bctx, 1))
	cancel()

	out := receive(t, done)
	assert.Equal(t, KindAPI, KindOf(out.err))
	assert.ErrorIs(t, out.err, context.Canceled)
}

func TestWait_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid arguments", func(t *testing.T) {
		fc := newWaitFixture()
		svc := NewService(fc, WithClock(clockwork.NewFakeClock()))

		_, err := svc.Wait(ctx, "app", nil, 0, time.Second)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = svc.Wait(ctx, "app", nil, time.Second, -time.Second)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Empty(t, fc.calls)
	})

	t.Run("no builds", func(t *testing.T) {
		fc := newFakeClient()
		fc.addJob("app", 0)
		svc := NewService(fc, WithClock(clockwork.NewFakeClock()))

		_, err := svc.Wait(ctx, "app", nil, time.Minute, time.Second)
		assert.ErrorIs(t, err, ErrBuildNotFound)
		assert.Equal(t, 0, fc.callCount("GetBuild"))
	})

	t.Run("status failure ends the wait", func(t *testing.T) {
		fc := newWaitFixture()
		fc.errs["GetBuild"] = fmt.Errorf("%w: dial tcp: refused", jenkins.ErrConnection)
		svc := NewService(fc, WithClock(clockwork.NewFakeClock()))

		_, err := svc.Wait(ctx, "app", nil, time.Minute, time.Second)
		assert.ErrorIs(t, err, ErrConnection)
		assert.Equal(t, 1, fc.callCount("GetBuild"))
	})
}

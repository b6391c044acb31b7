package buildops

import (
	"context"
	"fmt"
	"sync"

	"jenkins-mcp/src/jenkins"
)

// fakeClient is an in-memory JenkinsClient.
type fakeClient struct {
	mu sync.Mutex

	version  string
	jobs     map[string]*jenkins.Job
	builds   map[string]*jenkins.Build
	consoles map[string]string
	listing  []jenkins.JobSummary

	// errs fails the named method with the given error.
	errs map[string]error
	// enableErrs fails EnableJob for specific jobs.
	enableErrs map[string]error
	// onGetBuild runs before every GetBuild, e.g. to advance a fake clock.
	onGetBuild func(job string, number int)

	calls     []string
	triggered []map[string]any
	stopped   []int
	enabled   []string
	disabled  []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		version:    "2.401.3",
		jobs:       map[string]*jenkins.Job{},
		builds:     map[string]*jenkins.Build{},
		consoles:   map[string]string{},
		errs:       map[string]error{},
		enableErrs: map[string]error{},
	}
}

func buildKey(job string, number int) string {
	return fmt.Sprintf("%s#%d", job, number)
}

func (f *fakeClient) addJob(name string, last int) *jenkins.Job {
	j := &jenkins.Job{Name: name, FullName: name, NextBuildNumber: last + 1}
	if last > 0 {
		j.LastBuild = &jenkins.BuildRef{Number: last}
	}
	f.jobs[name] = j
	return j
}

func (f *fakeClient) addBuild(job string, b *jenkins.Build) {
	f.builds[buildKey(job, b.Number)] = b
}

func (f *fakeClient) record(call string) error {
	f.calls = append(f.calls, call)
	return f.errs[call]
}

func (f *fakeClient) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeClient) GetVersion(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetVersion"); err != nil {
		return "", err
	}
	return f.version, nil
}

func (f *fakeClient) GetJob(ctx context.Context, job string) (*jenkins.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetJob"); err != nil {
		return nil, err
	}
	j, ok := f.jobs[job]
	if !ok {
		return nil, &jenkins.NotFoundError{Job: job}
	}
	cp := *j
	return &cp, nil
}

func (f *fakeClient) GetBuild(ctx context.Context, job string, number int) (*jenkins.Build, error) {
	if f.onGetBuild != nil {
		f.onGetBuild(job, number)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetBuild"); err != nil {
		return nil, err
	}
	b, ok := f.builds[buildKey(job, number)]
	if !ok {
		return nil, &jenkins.NotFoundError{Job: job, Build: number}
	}
	cp := *b
	return &cp, nil
}

func (f *fakeClient) GetConsoleText(ctx context.Context, job string, number int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetConsoleText"); err != nil {
		return "", err
	}
	text, ok := f.consoles[buildKey(job, number)]
	if !ok {
		return "", &jenkins.NotFoundError{Job: job, Build: number}
	}
	return text, nil
}

func (f *fakeClient) setConsole(job string, number int, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consoles[buildKey(job, number)] = text
}

func (f *fakeClient) TriggerBuild(ctx context.Context, job string, params map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("TriggerBuild"); err != nil {
		return err
	}
	j, ok := f.jobs[job]
	if !ok {
		return &jenkins.NotFoundError{Job: job}
	}
	j.NextBuildNumber++
	f.triggered = append(f.triggered, params)
	return nil
}

func (f *fakeClient) EnableJob(ctx context.Context, job string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EnableJob"); err != nil {
		return err
	}
	if err := f.enableErrs[job]; err != nil {
		return err
	}
	f.enabled = append(f.enabled, job)
	return nil
}

func (f *fakeClient) DisableJob(ctx context.Context, job string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DisableJob"); err != nil {
		return err
	}
	f.disabled = append(f.disabled, job)
	return nil
}

func (f *fakeClient) StopBuild(ctx context.Context, job string, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StopBuild"); err != nil {
		return err
	}
	f.stopped = append(f.stopped, number)
	return nil
}

func (f *fakeClient) ListJobs(ctx context.Context) ([]jenkins.JobSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListJobs"); err != nil {
		return nil, err
	}
	return f.listing, nil
}

func intPtr(n int) *int {
	return &n
}

func boolPtr(b bool) *bool {
	return &b
}

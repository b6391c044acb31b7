package buildops

import (
	"context"
	"fmt"
	"strings"

	"jenkins-mcp/src/jenkins"
)

// Version returns the Jenkins server version.
func (s *Service) Version(ctx context.Context) (string, error) {
	v, err := s.client.GetVersion(ctx)
	if err != nil {
		return "", translate("get version", "", 0, err)
	}
	return v, nil
}

// JobInfo returns a job's metadata.
func (s *Service) JobInfo(ctx context.Context, job string) (*jenkins.Job, error) {
	const op = "get job info"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	info, err := s.client.GetJob(ctx, job)
	if err != nil {
		return nil, translate(op, job, 0, err)
	}
	return info, nil
}

// ListJobs returns every job on the server, folders included.
func (s *Service) ListJobs(ctx context.Context) ([]JobListing, error) {
	jobs, err := s.client.ListJobs(ctx)
	if err != nil {
		return nil, translate("list jobs", "", 0, err)
	}

	out := make([]JobListing, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobListing{
			Name:     j.Name,
			FullName: j.FullName,
			URL:      j.URL,
			Color:    j.Color,
			Disabled: isDisabled(j.Color),
		})
	}
	return out, nil
}

// BuildStatus returns the status of a build, the latest one when build is nil.
func (s *Service) BuildStatus(ctx context.Context, job string, build *int) (*BuildStatus, error) {
	const op = "get build status"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	st, err := s.status(ctx, op, job, number)
	if err != nil {
		return nil, err
	}
	st.Job = job
	return st, nil
}

// EnableJob enables a job and reports the buildable flag Jenkins shows afterwards.
// A missing flag is reported as false.
func (s *Service) EnableJob(ctx context.Context, job string) (*JobStateResult, error) {
	return s.setJobState(ctx, "enable job", job, s.client.EnableJob, false)
}

// DisableJob disables a job and reports the buildable flag Jenkins shows afterwards.
// A missing flag is reported as true.
func (s *Service) DisableJob(ctx context.Context, job string) (*JobStateResult, error) {
	return s.setJobState(ctx, "disable job", job, s.client.DisableJob, true)
}

func (s *Service) setJobState(ctx context.Context, op, job string, apply func(context.Context, string) error, missing bool) (*JobStateResult, error) {
	if err := validJob(op, job); err != nil {
		return nil, err
	}
	if err := apply(ctx, job); err != nil {
		return nil, translate(op, job, 0, err)
	}
	info, err := s.client.GetJob(ctx, job)
	if err != nil {
		return nil, translate(op, job, 0, err)
	}

	buildable := missing
	if info.Buildable != nil {
		buildable = *info.Buildable
	}

	state := "disabled"
	if buildable {
		state = "enabled"
	}
	s.log.Info("%s %s: buildable=%t", op, job, buildable)
	return &JobStateResult{
		Job:       job,
		Buildable: buildable,
		Message:   fmt.Sprintf("Job '%s' is now %s", job, state),
	}, nil
}

// CancelBuild aborts a running build. A build that already has a result is
// left alone and reported with Success false.
func (s *Service) CancelBuild(ctx context.Context, job string, build *int) (*CancelResult, error) {
	const op = "cancel build"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	st, err := s.status(ctx, op, job, number)
	if err != nil {
		return nil, err
	}

	res := &CancelResult{Job: job, BuildNumber: number}
	if st.Terminal() {
		res.Message = "Build already completed with result: " + st.Result
		return res, nil
	}

	if err := s.client.StopBuild(ctx, job, number); err != nil {
		return nil, translate(op, job, number, err)
	}
	s.log.Info("aborted %s #%d", job, number)
	res.Success = true
	res.Message = fmt.Sprintf("Build #%d of job '%s' cancelled", number, job)
	return res, nil
}

// EnableAllJobs enables every disabled job selected by folder and recursive.
// Per-job failures are logged and recorded, not returned.
func (s *Service) EnableAllJobs(ctx context.Context, folder string, recursive bool) (*EnableAllResult, error) {
	const op = "enable all jobs"

	jobs, err := s.client.ListJobs(ctx)
	if err != nil {
		return nil, translate(op, "", 0, err)
	}

	folder = strings.Trim(folder, "/")
	res := &EnableAllResult{Enabled: []string{}, Failed: []JobFailure{}}
	for _, j := range jobs {
		if !isDisabled(j.Color) || !inFolder(j.FullName, folder, recursive) {
			continue
		}
		if err := s.client.EnableJob(ctx, j.FullName); err != nil {
			s.log.Error("failed to enable %s: %v", j.FullName, err)
			res.Failed = append(res.Failed, JobFailure{Job: j.FullName, Error: translate(op, j.FullName, 0, err).Error()})
			continue
		}
		res.Enabled = append(res.Enabled, j.FullName)
	}
	res.Count = len(res.Enabled)

	s.log.Info("enabled %d jobs (folder=%q recursive=%t, %d failed)", res.Count, folder, recursive, len(res.Failed))
	return res, nil
}

// isDisabled reports whether a job color denotes a disabled job.
func isDisabled(color string) bool {
	return color == "disabled" || strings.HasSuffix(color, "_disabled")
}

// inFolder applies the folder filter to a full job name. folder must already
// be stripped of leading and trailing slashes.
func inFolder(fullName, folder string, recursive bool) bool {
	if folder == "" {
		return recursive || !strings.Contains(fullName, "/")
	}
	rest, ok := strings.CutPrefix(fullName, folder+"/")
	if recursive {
		return fullName == folder || ok
	}
	return ok && !strings.Contains(rest, "/")
}

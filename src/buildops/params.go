package buildops

import (
	"context"
	"fmt"
	"strings"

	"jenkins-mcp/src/jenkins"
)

const parametersActionClass = "hudson.model.ParametersAction"

func isParametersAction(a *jenkins.Action) bool {
	return a.Class == parametersActionClass || strings.HasSuffix(a.Class, "ParametersAction")
}

// extractParameters flattens the first parameters action of a build, skipping
// null actions, null entries and entries without a name.
func extractParameters(b *jenkins.Build) []BuildParameter {
	params := []BuildParameter{}
	for _, action := range b.Actions {
		if action == nil || !isParametersAction(action) {
			continue
		}
		for _, p := range action.Parameters {
			if p == nil || p.Name == "" {
				continue
			}
			params = append(params, BuildParameter{Name: p.Name, Value: p.Value})
		}
		break
	}
	return params
}

// triggeredBuildNumber re-reads the job after a trigger and returns
// nextBuildNumber - 1. A concurrent trigger can make this off by one or more.
func (s *Service) triggeredBuildNumber(ctx context.Context, op, job string) (int, error) {
	info, err := s.client.GetJob(ctx, job)
	if err != nil {
		return 0, translate(op, job, 0, err)
	}
	return info.NextBuildNumber - 1, nil
}

// RunJob triggers a build, with parameters when params is non-empty.
func (s *Service) RunJob(ctx context.Context, job string, params map[string]any) (*RunResult, error) {
	const op = "run job"

	if err := validJob(op, job); err != nil {
		return nil, err
	}

	if err := s.client.TriggerBuild(ctx, job, params); err != nil {
		return nil, translate(op, job, 0, err)
	}
	number, err := s.triggeredBuildNumber(ctx, op, job)
	if err != nil {
		return nil, err
	}

	s.log.Info("triggered %s #%d with %d parameters", job, number, len(params))
	return &RunResult{
		Job:         job,
		BuildNumber: number,
		Message:     fmt.Sprintf("Job '%s' started successfully. Build number: %d", job, number),
	}, nil
}

// BuildParameters returns the parameters recorded for a build, in order.
func (s *Service) BuildParameters(ctx context.Context, job string, build *int) (*ParametersResult, error) {
	const op = "get build parameters"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	b, err := s.client.GetBuild(ctx, job, number)
	if err != nil {
		return nil, translate(op, job, number, err)
	}

	return &ParametersResult{
		Job:         job,
		BuildNumber: number,
		Parameters:  extractParameters(b),
	}, nil
}

// Rebuild triggers a new build with the parameters of sourceBuild.
func (s *Service) Rebuild(ctx context.Context, job string, sourceBuild int) (*RebuildResult, error) {
	const op = "rebuild"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	if sourceBuild <= 0 {
		return nil, invalidArgument(op, "build_number must be a positive integer, got %d", sourceBuild)
	}

	b, err := s.client.GetBuild(ctx, job, sourceBuild)
	if err != nil {
		return nil, translate(op, job, sourceBuild, err)
	}

	params := map[string]any{}
	for _, p := range extractParameters(b) {
		params[p.Name] = p.Value
	}

	if err := s.client.TriggerBuild(ctx, job, params); err != nil {
		return nil, translate(op, job, 0, err)
	}
	number, err := s.triggeredBuildNumber(ctx, op, job)
	if err != nil {
		return nil, err
	}

	s.log.Info("rebuilt %s #%d as #%d", job, sourceBuild, number)
	return &RebuildResult{
		Job:               job,
		SourceBuildNumber: sourceBuild,
		NewBuildNumber:    number,
		Parameters:        params,
		Message:           fmt.Sprintf("Job '%s' rebuilt from build #%d. New build number: %d", job, sourceBuild, number),
	}, nil
}

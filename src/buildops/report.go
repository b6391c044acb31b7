package buildops

import (
	"context"

	"jenkins-mcp/src/classify"
)

// Errors classifies every console line of a build. Non-empty patterns replace
// the default set with a single "custom" category. Patterns that fail to
// compile are skipped and listed in the result. Errors that repeat with only
// volatile differences are also reported as recurring groups.
func (s *Service) Errors(ctx context.Context, job string, build *int, patterns []string) (*ErrorsResult, error) {
	const op = "get build errors"

	if err := validJob(op, job); err != nil {
		return nil, err
	}

	set := s.patterns
	if len(patterns) > 0 {
		set = classify.Custom(patterns)
	}
	for _, sp := range set.Skipped {
		s.log.Warn("skipping invalid pattern %q in category %s: %s", sp.Pattern, sp.Category, sp.Reason)
	}

	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	lines, err := s.fetchConsole(ctx, op, job, number)
	if err != nil {
		return nil, err
	}

	res := set.Classify(lines)
	s.log.Debug("classified %d lines of %s #%d: %d matches", len(lines), job, number, res.Total)

	return &ErrorsResult{
		Job:             job,
		BuildNumber:     number,
		Errors:          res.Errors,
		Summary:         res.Summary,
		Total:           res.Total,
		Recurring:       classify.Recurring(res.Errors),
		SkippedPatterns: set.Skipped,
	}, nil
}

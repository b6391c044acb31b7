package buildops

import (
	"context"
	"strings"
)

// splitLines splits console text on "\n", treating "\r\n" as one break.
// A single trailing newline does not produce an empty last line, and empty
// text has no lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (s *Service) fetchConsole(ctx context.Context, op, job string, number int) ([]string, error) {
	text, err := s.client.GetConsoleText(ctx, job, number)
	if err != nil {
		return nil, translate(op, job, number, err)
	}
	if s.filter != nil {
		text = s.filter(text)
	}
	return splitLines(text), nil
}

// Console returns the console log of a build, optionally limited to the last
// tail or first head lines. tail and head are mutually exclusive.
func (s *Service) Console(ctx context.Context, job string, build, tail, head *int) (*ConsoleResult, error) {
	const op = "get console"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	if tail != nil && head != nil {
		return nil, invalidArgument(op, "tail and head are mutually exclusive")
	}
	if tail != nil && *tail <= 0 {
		return nil, invalidArgument(op, "tail must be a positive integer, got %d", *tail)
	}
	if head != nil && *head <= 0 {
		return nil, invalidArgument(op, "head must be a positive integer, got %d", *head)
	}

	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	lines, err := s.fetchConsole(ctx, op, job, number)
	if err != nil {
		return nil, err
	}

	total := len(lines)
	window := lines
	switch {
	case tail != nil:
		window = lines[total-min(*tail, total):]
	case head != nil:
		window = lines[:min(*head, total)]
	}

	return &ConsoleResult{
		Job:           job,
		BuildNumber:   number,
		Output:        strings.Join(window, "\n"),
		TotalLines:    total,
		ReturnedLines: len(window),
	}, nil
}

// Monitor returns the console lines from fromLine onwards together with the
// build state. NextLine is the line count at the time of the call.
func (s *Service) Monitor(ctx context.Context, job string, build *int, fromLine int) (*MonitorResult, error) {
	const op = "monitor build"

	if err := validJob(op, job); err != nil {
		return nil, err
	}
	if fromLine < 0 {
		return nil, invalidArgument(op, "from_line must be >= 0, got %d", fromLine)
	}

	number, err := s.resolveBuild(ctx, op, job, build)
	if err != nil {
		return nil, err
	}
	st, err := s.status(ctx, op, job, number)
	if err != nil {
		return nil, err
	}
	lines, err := s.fetchConsole(ctx, op, job, number)
	if err != nil {
		return nil, err
	}

	total := len(lines)
	res := &MonitorResult{
		Job:         job,
		BuildNumber: number,
		FromLine:    fromLine,
		NextLine:    total,
		Building:    st.Building,
		Result:      st.Result,
	}
	switch {
	case fromLine > total:
		s.log.Warn("console of %s #%d shrank below cursor: from_line=%d total=%d", job, number, fromLine, total)
	case fromLine < total:
		res.Output = strings.Join(lines[fromLine:], "\n")
	}
	return res, nil
}

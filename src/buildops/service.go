// Package buildops implements build lifecycle and log analysis operations
// on top of a Jenkins client: latest-build resolution, console windowing,
// incremental monitoring, waiting, error classification, parameter
// propagation and bulk job state changes.
package buildops

import (
	"context"

	"github.com/jonboulle/clockwork"

	"jenkins-mcp/src/classify"
	"jenkins-mcp/src/jenkins"
	"jenkins-mcp/src/logger"
)

// JenkinsClient is the subset of the Jenkins API the service needs.
// *jenkins.Client implements it.
type JenkinsClient interface {
	GetVersion(ctx context.Context) (string, error)
	GetJob(ctx context.Context, job string) (*jenkins.Job, error)
	GetBuild(ctx context.Context, job string, number int) (*jenkins.Build, error)
	GetConsoleText(ctx context.Context, job string, number int) (string, error)
	TriggerBuild(ctx context.Context, job string, params map[string]any) error
	EnableJob(ctx context.Context, job string) error
	DisableJob(ctx context.Context, job string) error
	StopBuild(ctx context.Context, job string, number int) error
	ListJobs(ctx context.Context) ([]jenkins.JobSummary, error)
}

// Service implements the build operations. It holds no per-call state and is
// safe for concurrent use.
type Service struct {
	client   JenkinsClient
	log      logger.Logger
	clock    clockwork.Clock
	patterns *classify.PatternSet
	filter   func(string) string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithClock replaces the clock used by Wait.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithPatterns replaces the default error pattern set used by Errors.
func WithPatterns(p *classify.PatternSet) Option {
	return func(s *Service) {
		s.patterns = p
	}
}

// WithConsoleFilter transforms console text before it is split into lines,
// e.g. sanitize.StripANSI.
func WithConsoleFilter(f func(string) string) Option {
	return func(s *Service) {
		s.filter = f
	}
}

// NewService creates a Service backed by client.
func NewService(client JenkinsClient, opts ...Option) *Service {
	s := &Service{
		client:   client,
		log:      logger.NewSilentLogger(),
		clock:    clockwork.NewRealClock(),
		patterns: classify.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveBuild returns build when given, otherwise the job's last build number.
// An explicit number is not checked for existence here.
func (s *Service) resolveBuild(ctx context.Context, op, job string, build *int) (int, error) {
	if build != nil {
		return *build, nil
	}

	info, err := s.client.GetJob(ctx, job)
	if err != nil {
		return 0, translate(op, job, 0, err)
	}
	if info.LastBuild == nil {
		return 0, noBuilds(op, job)
	}
	s.log.Debug("resolved latest build of %s to #%d", job, info.LastBuild.Number)
	return info.LastBuild.Number, nil
}

// status fetches the build and reduces it to a BuildStatus.
func (s *Service) status(ctx context.Context, op, job string, number int) (*BuildStatus, error) {
	b, err := s.client.GetBuild(ctx, job, number)
	if err != nil {
		return nil, translate(op, job, number, err)
	}
	return newBuildStatus(b), nil
}

func validJob(op, job string) error {
	if job == "" {
		return invalidArgument(op, "job name is required")
	}
	return nil
}

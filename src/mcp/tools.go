package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"jenkins-mcp/src/buildops"
)

// toolFunc produces a result that is rendered as JSON, or an error that is
// rendered as a tool error.
type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (any, error)

type toolDef struct {
	tool mcp.Tool
	run  toolFunc
}

func jobNameArg() mcp.ToolOption {
	return mcp.WithString("job_name",
		mcp.Required(),
		mcp.Description("Full job name; folder jobs are written as folder/job"),
	)
}

func buildNumberArg() mcp.ToolOption {
	return mcp.WithNumber("build_number",
		mcp.Description("Build number (uses latest build if not provided)"),
	)
}

func (s *Server) toolset() []toolDef {
	return []toolDef{
		{
			tool: mcp.NewTool("get-version",
				mcp.WithDescription("Get the version of the Jenkins server."),
			),
			run: s.getVersion,
		},
		{
			tool: mcp.NewTool("job-info",
				mcp.WithDescription("Get job information (everything except console output)."),
				jobNameArg(),
			),
			run: s.jobInfo,
		},
		{
			tool: mcp.NewTool("get-jobs",
				mcp.WithDescription("List all Jenkins jobs, including jobs inside folders."),
			),
			run: s.getJobs,
		},
		{
			tool: mcp.NewTool("run-job",
				mcp.WithDescription("Trigger a Jenkins job to run with optional parameters. Returns the new build number."),
				jobNameArg(),
				mcp.WithString("parameters",
					mcp.Description(`JSON object of job parameters, e.g. {"BRANCH": "main"} (default: none)`),
				),
			),
			run: s.runJob,
		},
		{
			tool: mcp.NewTool("job-console",
				mcp.WithDescription("Get the console output of a build. Use tail or head (not both) to limit the number of lines."),
				jobNameArg(),
				buildNumberArg(),
				mcp.WithNumber("tail", mcp.Description("Return only the last N lines")),
				mcp.WithNumber("head", mcp.Description("Return only the first N lines")),
			),
			run: s.jobConsole,
		},
		{
			tool: mcp.NewTool("build-status",
				mcp.WithDescription("Get the status of a build: result, whether it is still building, duration and URL."),
				jobNameArg(),
				buildNumberArg(),
			),
			run: s.buildStatus,
		},
		{
			tool: mcp.NewTool("monitor-build",
				mcp.WithDescription("Get new console lines of a build since from_line, plus its status. Pass the returned next_line as from_line on the next call."),
				jobNameArg(),
				buildNumberArg(),
				mcp.WithNumber("from_line",
					mcp.Description("Zero-based line to start from (default: 0)"),
					mcp.DefaultNumber(0),
				),
			),
			run: s.monitorBuild,
		},
		{
			tool: mcp.NewTool("wait-for-build",
				mcp.WithDescription("Block until a build finishes or the timeout elapses, polling its status."),
				jobNameArg(),
				buildNumberArg(),
				mcp.WithNumber("timeout",
					mcp.Description("Maximum seconds to wait (default: 3600)"),
					mcp.DefaultNumber(buildops.DefaultWaitTimeout.Seconds()),
				),
				mcp.WithNumber("poll_interval",
					mcp.Description("Seconds between status checks (default: 30)"),
					mcp.DefaultNumber(buildops.DefaultPollInterval.Seconds()),
				),
			),
			run: s.waitForBuild,
		},
		{
			tool: mcp.NewTool("get-build-errors",
				mcp.WithDescription("Find error lines in a build's console output. Lines are classified into error, exception, failure and jenkins categories, or matched against custom regex patterns."),
				jobNameArg(),
				buildNumberArg(),
				mcp.WithArray("patterns",
					mcp.Description("Custom regex patterns; replaces the default categories with a single 'custom' category"),
					mcp.WithStringItems(),
				),
			),
			run: s.getBuildErrors,
		},
		{
			tool: mcp.NewTool("get-build-parameters",
				mcp.WithDescription("Get the parameters a build was started with."),
				jobNameArg(),
				buildNumberArg(),
			),
			run: s.getBuildParameters,
		},
		{
			tool: mcp.NewTool("rebuild",
				mcp.WithDescription("Start a new build with the same parameters as an existing build."),
				jobNameArg(),
				mcp.WithNumber("build_number",
					mcp.Required(),
					mcp.Description("Build whose parameters are reused"),
				),
			),
			run: s.rebuild,
		},
		{
			tool: mcp.NewTool("enable-job",
				mcp.WithDescription("Enable a disabled job."),
				jobNameArg(),
			),
			run: s.enableJob,
		},
		{
			tool: mcp.NewTool("disable-job",
				mcp.WithDescription("Disable a job."),
				jobNameArg(),
			),
			run: s.disableJob,
		},
		{
			tool: mcp.NewTool("cancel-build",
				mcp.WithDescription("Abort a running build. Builds that already finished are left alone."),
				jobNameArg(),
				buildNumberArg(),
			),
			run: s.cancelBuild,
		},
		{
			tool: mcp.NewTool("enable-all-jobs",
				mcp.WithDescription("Enable every disabled job, optionally limited to a folder."),
				mcp.WithString("folder",
					mcp.Description("Folder to limit to, e.g. team/project (default: all jobs)"),
				),
				mcp.WithBoolean("recursive",
					mcp.Description("Include jobs in sub-folders (default: true). Without a folder, false means top-level jobs only."),
					mcp.DefaultBool(true),
				),
			),
			run: s.enableAllJobs,
		},
	}
}

func (s *Server) getVersion(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	v, err := s.ops.Version(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"version": v}, nil
}

func (s *Server) jobInfo(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, err := requiredString(request, "job_name")
	if err != nil {
		return nil, err
	}
	return s.ops.JobInfo(ctx, job)
}

func (s *Server) getJobs(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	return s.ops.ListJobs(ctx)
}

func (s *Server) runJob(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, err := requiredString(request, "job_name")
	if err != nil {
		return nil, err
	}
	params, err := parseParameters(request.GetArguments()["parameters"])
	if err != nil {
		return nil, err
	}
	return s.ops.RunJob(ctx, job, params)
}

func (s *Server) jobConsole(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	tail, err := optionalInt(request, "tail")
	if err != nil {
		return nil, err
	}
	head, err := optionalInt(request, "head")
	if err != nil {
		return nil, err
	}
	return s.ops.Console(ctx, job, build, tail, head)
}

func (s *Server) buildStatus(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	return s.ops.BuildStatus(ctx, job, build)
}

func (s *Server) monitorBuild(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	from, err := optionalInt(request, "from_line")
	if err != nil {
		return nil, err
	}
	fromLine := 0
	if from != nil {
		fromLine = *from
	}
	return s.ops.Monitor(ctx, job, build, fromLine)
}

func (s *Server) waitForBuild(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	timeout, err := seconds(request, "timeout", buildops.DefaultWaitTimeout)
	if err != nil {
		return nil, err
	}
	poll, err := seconds(request, "poll_interval", buildops.DefaultPollInterval)
	if err != nil {
		return nil, err
	}
	return s.ops.Wait(ctx, job, build, timeout, poll)
}

func (s *Server) getBuildErrors(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	patterns, err := stringList(request, "patterns")
	if err != nil {
		return nil, err
	}
	return s.ops.Errors(ctx, job, build, patterns)
}

func (s *Server) getBuildParameters(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	return s.ops.BuildParameters(ctx, job, build)
}

func (s *Server) rebuild(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, argError("build_number is required")
	}
	return s.ops.Rebuild(ctx, job, *build)
}

func (s *Server) enableJob(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, err := requiredString(request, "job_name")
	if err != nil {
		return nil, err
	}
	return s.ops.EnableJob(ctx, job)
}

func (s *Server) disableJob(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, err := requiredString(request, "job_name")
	if err != nil {
		return nil, err
	}
	return s.ops.DisableJob(ctx, job)
}

func (s *Server) cancelBuild(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	job, build, err := jobAndBuild(request)
	if err != nil {
		return nil, err
	}
	return s.ops.CancelBuild(ctx, job, build)
}

func (s *Server) enableAllJobs(ctx context.Context, request mcp.CallToolRequest) (any, error) {
	folder := request.GetString("folder", "")
	recursive := request.GetBool("recursive", true)
	return s.ops.EnableAllJobs(ctx, folder, recursive)
}

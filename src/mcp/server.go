package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"jenkins-mcp/src/buildops"
	"jenkins-mcp/src/jenkins"
	"jenkins-mcp/src/logger"
)

// Operations is the build operations surface exposed as tools.
// *buildops.Service implements it.
type Operations interface {
	Version(ctx context.Context) (string, error)
	JobInfo(ctx context.Context, job string) (*jenkins.Job, error)
	ListJobs(ctx context.Context) ([]buildops.JobListing, error)
	RunJob(ctx context.Context, job string, params map[string]any) (*buildops.RunResult, error)
	Console(ctx context.Context, job string, build, tail, head *int) (*buildops.ConsoleResult, error)
	BuildStatus(ctx context.Context, job string, build *int) (*buildops.BuildStatus, error)
	Monitor(ctx context.Context, job string, build *int, fromLine int) (*buildops.MonitorResult, error)
	Wait(ctx context.Context, job string, build *int, timeout, pollInterval time.Duration) (*buildops.WaitResult, error)
	Errors(ctx context.Context, job string, build *int, patterns []string) (*buildops.ErrorsResult, error)
	BuildParameters(ctx context.Context, job string, build *int) (*buildops.ParametersResult, error)
	Rebuild(ctx context.Context, job string, sourceBuild int) (*buildops.RebuildResult, error)
	EnableJob(ctx context.Context, job string) (*buildops.JobStateResult, error)
	DisableJob(ctx context.Context, job string) (*buildops.JobStateResult, error)
	CancelBuild(ctx context.Context, job string, build *int) (*buildops.CancelResult, error)
	EnableAllJobs(ctx context.Context, folder string, recursive bool) (*buildops.EnableAllResult, error)
}

// Server is the MCP server for jenkins-mcp.
type Server struct {
	mcpServer *server.MCPServer
	ops       Operations
	log       logger.Logger
	tools     map[string]server.ToolHandlerFunc
}

// NewServer creates a new MCP server exposing ops as tools.
func NewServer(ops Operations, log logger.Logger, version string) *Server {
	s := server.NewMCPServer(
		"jenkins-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	srv := &Server{
		mcpServer: s,
		ops:       ops,
		log:       log,
		tools:     make(map[string]server.ToolHandlerFunc),
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	for _, t := range s.toolset() {
		handler := s.handle(t.tool.Name, t.run)
		s.tools[t.tool.Name] = handler
		s.mcpServer.AddTool(t.tool, handler)
	}
}

// MCPServer exposes the underlying server, e.g. for the HTTP transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

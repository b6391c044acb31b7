// Package main provides the jenkins-mcp CLI: an MCP server that exposes a
// Jenkins instance as tools, plus terminal commands over the same operations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jenkins-mcp/src/buildops"
	"jenkins-mcp/src/classify"
	"jenkins-mcp/src/config"
	"jenkins-mcp/src/jenkins"
	"jenkins-mcp/src/logger"
	"jenkins-mcp/src/sanitize"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jenkins-mcp",
	Short: "jenkins-mcp - Jenkins build tools for MCP clients",
	Long: `jenkins-mcp exposes a Jenkins server through the Model Context Protocol.

Tools cover the build lifecycle (run, monitor, wait, cancel, rebuild) and
console log analysis (windowed output, error classification).

Configuration is read from the environment (and an optional .env file):
  JENKINS_URL, JENKINS_USERNAME, JENKINS_PASSWORD (required)
  JENKINS_TIMEOUT, JENKINS_INSECURE_SKIP_VERIFY, JENKINS_STRIP_ANSI,
  JENKINS_ERROR_PATTERNS_FILE, JENKINS_MCP_LOG_LEVEL, JENKINS_MCP_METRICS_ADDR`,
	SilenceUsage: true,
}

// app holds the wiring shared by every command that talks to Jenkins.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	zap     *logger.ZapLogger
	service *buildops.Service
}

// newApp loads configuration and builds the Jenkins client and service.
// quiet replaces the zap logger with a silent one, for full-screen commands.
func newApp(quiet bool) (*app, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if quiet {
		a.log = logger.NewSilentLogger()
	} else {
		zl, err := logger.NewZapLogger(cfg.Server.LogLevel)
		if err != nil {
			return nil, err
		}
		a.zap = zl
		a.log = zl
	}

	clientOpts := []jenkins.Option{jenkins.WithTimeout(cfg.Jenkins.Timeout)}
	if cfg.Jenkins.InsecureSkipVerify {
		a.log.Warn("TLS certificate verification is disabled for %s", cfg.Jenkins.URL)
		clientOpts = append(clientOpts, jenkins.WithInsecureSkipVerify())
	}
	client := jenkins.NewClient(cfg.Jenkins.URL, cfg.Jenkins.Username, cfg.Jenkins.Password, clientOpts...)

	serviceOpts := []buildops.Option{buildops.WithLogger(a.log)}
	if cfg.Jenkins.ErrorPatternsFile != "" {
		specs, err := classify.LoadPatternFile(cfg.Jenkins.ErrorPatternsFile)
		if err != nil {
			return nil, err
		}
		patterns := classify.Compile(specs)
		for _, sp := range patterns.Skipped {
			a.log.Warn("skipping pattern %q in category %s: %s", sp.Pattern, sp.Category, sp.Reason)
		}
		serviceOpts = append(serviceOpts, buildops.WithPatterns(patterns))
	}
	if cfg.Jenkins.StripANSI {
		serviceOpts = append(serviceOpts, buildops.WithConsoleFilter(sanitize.Clean))
	}
	a.service = buildops.NewService(client, serviceOpts...)

	return a, nil
}

// close flushes buffered log entries.
func (a *app) close() {
	if a.zap != nil {
		_ = a.zap.Sync()
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(errorsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

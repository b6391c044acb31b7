package main

import (
	"encoding/json"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"jenkins-mcp/src/buildops"
	"jenkins-mcp/src/httpserver"
	"jenkins-mcp/src/mcp"
	"jenkins-mcp/src/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Runs the MCP server over stdio (default) or streamable HTTP.

With --transport http the MCP endpoint is served on /mcp, alongside
/metrics and /healthz. With stdio, --metrics-addr starts a separate
HTTP listener for /metrics and /healthz.

Example:
  jenkins-mcp serve
  jenkins-mcp serve --transport http --addr :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("unsupported transport %q (want stdio or http)", transport)
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		metricsAddr := a.cfg.Server.MetricsAddr
		if cmd.Flags().Changed("metrics-addr") {
			metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		srv := mcp.NewServer(a.service, a.log, version)
		a.log.Info("starting jenkins-mcp %s for %s over %s", version, a.cfg.Jenkins.URL, transport)

		if metricsAddr != "" && (transport == "stdio" || metricsAddr != addr) {
			metricsSrv := httpserver.New(metricsAddr, nil, a.log)
			go func() {
				if err := metricsSrv.Run(ctx); err != nil {
					a.log.Error("metrics server failed: %v", err)
				}
			}()
		}

		if transport == "stdio" {
			return srv.Run()
		}
		httpSrv := httpserver.New(addr, server.NewStreamableHTTPServer(srv.MCPServer()), a.log)
		return httpSrv.Run(ctx)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch JOB",
	Short: "Follow a build's console output until it finishes",
	Long: `Opens a full-screen view of a build's console log, polling for new
lines until the build reports a result.

Example:
  jenkins-mcp watch team/app
  jenkins-mcp watch team/app --build 42 --interval 5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		build, err := buildFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		model := tui.NewWatchModel(ctx, a.service, args[0], build, interval)
		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}

		wm, ok := final.(tui.WatchModel)
		if !ok {
			return nil
		}
		if err := wm.Err(); err != nil {
			return err
		}
		if res := wm.Result(); res != nil && res.Result != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d finished: %s\n", res.Job, res.BuildNumber, res.Result)
		}
		return nil
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait JOB",
	Short: "Block until a build finishes and print its final status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		poll, _ := cmd.Flags().GetDuration("poll-interval")
		build, err := buildFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		res, err := a.service.Wait(ctx, args[0], build, timeout, poll)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var errorsCmd = &cobra.Command{
	Use:   "errors JOB",
	Short: "Classify the error lines of a build's console output",
	Long: `Scans a build's console log and prints matching lines grouped by
category. --pattern replaces the configured categories with a single
"custom" category and may be repeated.

Example:
  jenkins-mcp errors team/app --build 42
  jenkins-mcp errors team/app --pattern 'npm ERR!' --pattern '^FATAL'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, _ := cmd.Flags().GetStringArray("pattern")
		build, err := buildFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.service.Errors(cmd.Context(), args[0], build, patterns)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jenkins-mcp version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jenkins-mcp %s\n", version)
	},
}

// buildFlag returns --build, or nil when it was not given.
func buildFlag(cmd *cobra.Command) (*int, error) {
	if !cmd.Flags().Changed("build") {
		return nil, nil
	}
	n, err := cmd.Flags().GetInt("build")
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("--build must be a positive build number, got %d", n)
	}
	return &n, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio or http")
	serveCmd.Flags().String("addr", ":8080", "Listen address for the http transport")
	serveCmd.Flags().String("metrics-addr", "", "Listen address for /metrics and /healthz (default: $JENKINS_MCP_METRICS_ADDR)")

	watchCmd.Flags().Int("build", 0, "Build number (default: latest build)")
	watchCmd.Flags().Duration("interval", tui.DefaultWatchInterval, "Delay between polls")

	waitCmd.Flags().Int("build", 0, "Build number (default: latest build)")
	waitCmd.Flags().Duration("timeout", buildops.DefaultWaitTimeout, "Maximum time to wait")
	waitCmd.Flags().Duration("poll-interval", buildops.DefaultPollInterval, "Delay between status checks")

	errorsCmd.Flags().Int("build", 0, "Build number (default: latest build)")
	errorsCmd.Flags().StringArray("pattern", nil, "Custom regex pattern (repeatable)")
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jenkins-mcp/src/buildops"
	"jenkins-mcp/src/logger"
	"jenkins-mcp/src/metrics"
)

// handle wraps a toolFunc with request logging, metrics and rendering.
// Failures become tool errors, never protocol errors.
func (s *Server) handle(name string, run toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logger.With(s.log, "tool", name, "request_id", uuid.NewString())
		start := time.Now()
		log.Debug("tool call started with %d arguments", len(request.GetArguments()))

		result, err := run(ctx, request)
		if err != nil {
			kind := buildops.KindOf(err)
			metrics.ObserveToolCall(name, outcomeLabel(kind), time.Since(start))
			if kind == buildops.KindAPI || kind == buildops.KindConnection {
				log.Error("tool call failed: %v", err)
			} else {
				log.Warn("tool call failed: %v", err)
			}
			return mcp.NewToolResultError(renderError(err)), nil
		}

		text, err := renderResult(result)
		if err != nil {
			metrics.ObserveToolCall(name, "render_error", time.Since(start))
			log.Error("failed to render result: %v", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}

		metrics.ObserveToolCall(name, "ok", time.Since(start))
		log.Debug("tool call finished in %s", time.Since(start))
		return mcp.NewToolResultText(text), nil
	}
}

func renderResult(result any) (string, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// renderError formats err as "<label>: <message>", followed by a hint when
// one is available.
func renderError(err error) string {
	var e *buildops.Error
	if !errors.As(err, &e) {
		return "Error: " + err.Error()
	}

	msg := e.Kind.String() + ": " + e.Detail()
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

func outcomeLabel(k buildops.Kind) string {
	switch k {
	case buildops.KindInvalidArgument:
		return "invalid_argument"
	case buildops.KindJobNotFound:
		return "job_not_found"
	case buildops.KindBuildNotFound:
		return "build_not_found"
	case buildops.KindConnection:
		return "connection_error"
	case buildops.KindTimeout:
		return "timeout"
	default:
		return "api_error"
	}
}

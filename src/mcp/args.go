package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"jenkins-mcp/src/buildops"
)

func argError(format string, args ...any) error {
	return &buildops.Error{
		Kind:    buildops.KindInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

func requiredString(request mcp.CallToolRequest, name string) (string, error) {
	v := strings.TrimSpace(request.GetString(name, ""))
	if v == "" {
		return "", argError("%s parameter is required", name)
	}
	return v, nil
}

func jobAndBuild(request mcp.CallToolRequest) (string, *int, error) {
	job, err := requiredString(request, "job_name")
	if err != nil {
		return "", nil, err
	}
	build, err := optionalInt(request, "build_number")
	if err != nil {
		return "", nil, err
	}
	if build != nil && *build <= 0 {
		return "", nil, argError("build_number must be a positive integer, got %d", *build)
	}
	return job, build, nil
}

// optionalInt reads an integer argument. Absent and null mean nil. Numeric
// strings are accepted since some clients send every argument as a string.
func optionalInt(request mcp.CallToolRequest, name string) (*int, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, argError("%s must be an integer, got %v", name, v)
		}
		if v >= math.MaxInt64 || v <= math.MinInt64 {
			return nil, argError("%s is out of range, got %v", name, v)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, argError("%s must be an integer, got %q", name, v)
		}
		n = parsed
	default:
		return nil, argError("%s must be an integer, got %T", name, raw)
	}
	return &n, nil
}

// seconds reads a duration given in seconds, falling back to def when absent.
func seconds(request mcp.CallToolRequest, name string, def time.Duration) (time.Duration, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return def, nil
	}

	var secs float64
	switch v := raw.(type) {
	case float64:
		secs = v
	case int:
		secs = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, argError("%s must be a number of seconds, got %q", name, v)
		}
		secs = parsed
	default:
		return 0, argError("%s must be a number of seconds, got %T", name, raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// stringList reads an array of strings. A single string is a one-element list.
func stringList(request mcp.CallToolRequest, name string) ([]string, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, argError("%s[%d] must be a string, got %T", name, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, argError("%s must be a list of strings, got %T", name, raw)
	}
}

// parseParameters accepts a JSON object, either as a string or already
// decoded. An empty or whitespace-only string means no parameters.
func parseParameters(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var params map[string]any
		if err := json.Unmarshal([]byte(v), &params); err != nil {
			return nil, argError("Invalid JSON in parameters: %v", err)
		}
		return params, nil
	default:
		return nil, argError("parameters must be a JSON object, got %T", raw)
	}
}

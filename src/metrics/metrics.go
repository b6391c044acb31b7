// Package metrics defines the Prometheus collectors exported by jenkins-mcp.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "jenkins_mcp"

	operationLabel = "operation"
	outcomeLabel   = "outcome"
	toolLabel      = "tool"
	resultLabel    = "result"
)

var jenkinsRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jenkins_requests_total",
		Help:      "number of requests sent to the Jenkins API",
	},
	[]string{operationLabel, outcomeLabel},
)

var jenkinsRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "jenkins_request_duration_seconds",
		Help:      "latency of requests sent to the Jenkins API",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{operationLabel},
)

var toolCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "number of MCP tool calls by tool and outcome",
	},
	[]string{toolLabel, outcomeLabel},
)

var toolCallDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_call_duration_seconds",
		Help:      "latency of MCP tool calls",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 30, 120, 600, 3600},
	},
	[]string{toolLabel},
)

var buildWaitsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "build_waits_total",
		Help:      "number of completed wait-for-build loops by final build result",
	},
	[]string{resultLabel},
)

// ObserveJenkinsRequest records one Jenkins API round trip.
func ObserveJenkinsRequest(operation, outcome string, d time.Duration) {
	jenkinsRequestsTotal.With(prometheus.Labels{operationLabel: operation, outcomeLabel: outcome}).Inc()
	jenkinsRequestDuration.With(prometheus.Labels{operationLabel: operation}).Observe(d.Seconds())
}

// ObserveToolCall records one MCP tool invocation.
func ObserveToolCall(tool, outcome string, d time.Duration) {
	toolCallsTotal.With(prometheus.Labels{toolLabel: tool, outcomeLabel: outcome}).Inc()
	toolCallDuration.With(prometheus.Labels{toolLabel: tool}).Observe(d.Seconds())
}

// IncreaseBuildWaits counts a finished wait loop. result is the build result,
// or "timeout" when the deadline elapsed first.
func IncreaseBuildWaits(result string) {
	buildWaitsTotal.With(prometheus.Labels{resultLabel: result}).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jenkinsRequestsTotal)
	prometheus.MustRegister(jenkinsRequestDuration)
	prometheus.MustRegister(toolCallsTotal)
	prometheus.MustRegister(toolCallDuration)
	prometheus.MustRegister(buildWaitsTotal)
}

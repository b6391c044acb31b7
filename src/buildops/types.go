package buildops

import (
	"time"

	"jenkins-mcp/src/classify"
	"jenkins-mcp/src/jenkins"
)

// BuildStatus is a point-in-time snapshot of a build.
// Result is empty while Building is true.
type BuildStatus struct {
	Job         string `json:"job,omitempty"`
	Number      int    `json:"number"`
	Result      string `json:"result,omitempty"`
	Building    bool   `json:"building"`
	DurationMS  int64  `json:"duration_ms"`
	URL         string `json:"url"`
	DisplayName string `json:"display_name,omitempty"`
}

// Terminal reports whether the build has a result.
func (b *BuildStatus) Terminal() bool {
	return b.Result != ""
}

func newBuildStatus(b *jenkins.Build) *BuildStatus {
	return &BuildStatus{
		Number:      b.Number,
		Result:      b.Result,
		Building:    b.Building,
		DurationMS:  b.Duration,
		URL:         b.URL,
		DisplayName: b.DisplayName,
	}
}

// ConsoleResult is a windowed console log.
type ConsoleResult struct {
	Job           string `json:"job"`
	BuildNumber   int    `json:"build_number"`
	Output        string `json:"output"`
	TotalLines    int    `json:"total_lines"`
	ReturnedLines int    `json:"returned_lines"`
}

// MonitorResult is one page of a growing console log.
// Pass NextLine as the next call's fromLine.
type MonitorResult struct {
	Job         string `json:"job"`
	BuildNumber int    `json:"build_number"`
	Output      string `json:"output"`
	FromLine    int    `json:"from_line"`
	NextLine    int    `json:"next_line"`
	Building    bool   `json:"building"`
	Result      string `json:"result,omitempty"`
}

// WaitResult is the terminal snapshot returned by Wait.
type WaitResult struct {
	Job            string        `json:"job"`
	BuildNumber    int           `json:"build_number"`
	Result         string        `json:"result"`
	DurationMS     int64         `json:"duration_ms"`
	URL            string        `json:"url"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	Polls          int           `json:"polls"`
}

// ErrorsResult is the classification of a build's console log.
type ErrorsResult struct {
	Job             string                    `json:"job"`
	BuildNumber     int                       `json:"build_number"`
	Errors          []classify.Match          `json:"errors"`
	Summary         map[string]int            `json:"summary"`
	Total           int                       `json:"total"`
	Recurring       []classify.Recurrence     `json:"recurring,omitempty"`
	SkippedPatterns []classify.SkippedPattern `json:"skipped_patterns,omitempty"`
}

// RunResult describes a triggered build.
type RunResult struct {
	Job         string `json:"job"`
	BuildNumber int    `json:"build_number"`
	Message     string `json:"message"`
}

// BuildParameter is a recorded build parameter. Value may be nil.
type BuildParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ParametersResult lists a build's parameters in recorded order.
type ParametersResult struct {
	Job         string           `json:"job"`
	BuildNumber int              `json:"build_number"`
	Parameters  []BuildParameter `json:"parameters"`
}

// RebuildResult describes a build re-triggered with a previous build's parameters.
type RebuildResult struct {
	Job               string         `json:"job"`
	SourceBuildNumber int            `json:"source_build_number"`
	NewBuildNumber    int            `json:"new_build_number"`
	Parameters        map[string]any `json:"parameters"`
	Message           string         `json:"message"`
}

// JobStateResult reports the buildable flag observed after enabling or disabling a job.
type JobStateResult struct {
	Job       string `json:"job"`
	Buildable bool   `json:"buildable"`
	Message   string `json:"message"`
}

// CancelResult reports whether an abort was issued.
type CancelResult struct {
	Job         string `json:"job"`
	BuildNumber int    `json:"build_number"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
}

// JobFailure is one job EnableAllJobs could not enable.
type JobFailure struct {
	Job   string `json:"job"`
	Error string `json:"error"`
}

// EnableAllResult summarizes a bulk enable.
type EnableAllResult struct {
	Count   int          `json:"count"`
	Enabled []string     `json:"enabled"`
	Failed  []JobFailure `json:"failed"`
}

// JobListing is one entry of ListJobs.
type JobListing struct {
	Name     string `json:"name"`
	FullName string `json:"fullname"`
	URL      string `json:"url"`
	Color    string `json:"color"`
	Disabled bool   `json:"disabled"`
}

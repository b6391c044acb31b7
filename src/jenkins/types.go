package jenkins

// BuildRef is the short build pointer embedded in job metadata.
type BuildRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// HealthReport is a job health summary entry.
type HealthReport struct {
	Description string `json:"description"`
	Score       int    `json:"score"`
}

// Job represents the metadata returned by /job/{name}/api/json.
type Job struct {
	Class       string `json:"_class"`
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Color       string `json:"color"`
	// Buildable is nil when the server omits the field.
	Buildable           *bool          `json:"buildable"`
	InQueue             bool           `json:"inQueue"`
	NextBuildNumber     int            `json:"nextBuildNumber"`
	LastBuild           *BuildRef      `json:"lastBuild"`
	LastCompletedBuild  *BuildRef      `json:"lastCompletedBuild"`
	LastSuccessfulBuild *BuildRef      `json:"lastSuccessfulBuild"`
	LastFailedBuild     *BuildRef      `json:"lastFailedBuild"`
	Builds              []BuildRef     `json:"builds"`
	HealthReport        []HealthReport `json:"healthReport"`
}

// Build represents the metadata returned by /job/{name}/{number}/api/json.
type Build struct {
	Class       string `json:"_class"`
	Number      int    `json:"number"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
	// Result is empty while the build is running (null in the API).
	Result            string `json:"result"`
	Building          bool   `json:"building"`
	Duration          int64  `json:"duration"`
	EstimatedDuration int64  `json:"estimatedDuration"`
	Timestamp         int64  `json:"timestamp"`
	QueueID           int64  `json:"queueId"`
	// Actions keeps null entries as nil pointers.
	Actions []*Action `json:"actions"`
}

// Action is one entry of a build's actions list.
type Action struct {
	Class      string       `json:"_class"`
	Parameters []*Parameter `json:"parameters,omitempty"`
	Causes     []Cause      `json:"causes,omitempty"`
}

// Parameter is a recorded build parameter. Value may be nil.
type Parameter struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Cause describes why a build was started.
type Cause struct {
	Class            string `json:"_class"`
	ShortDescription string `json:"shortDescription"`
}

// JobSummary is a flattened entry of the recursive job listing.
type JobSummary struct {
	Class    string `json:"_class"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	URL      string `json:"url"`
	Color    string `json:"color"`
}

type crumbResponse struct {
	Crumb             string `json:"crumb"`
	CrumbRequestField string `json:"crumbRequestField"`
}

type jobNode struct {
	Class    string    `json:"_class"`
	Name     string    `json:"name"`
	FullName string    `json:"fullName"`
	URL      string    `json:"url"`
	Color    string    `json:"color"`
	Jobs     []jobNode `json:"jobs"`
}

type jobsResponse struct {
	Jobs []jobNode `json:"jobs"`
}

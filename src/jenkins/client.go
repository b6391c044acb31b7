// Package jenkins provides a client for the Jenkins JSON API.
package jenkins

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"jenkins-mcp/src/metrics"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// maxFolderDepth stops ListJobs from descending forever into nested folders.
	maxFolderDepth = 10

	// maxErrorBody caps how much of a failed response body ends up in an error.
	maxErrorBody = 512

	jobsTree = "jobs[_class,name,fullName,url,color,jobs[name]]"
)

// Client is a Jenkins API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	jar        http.CookieJar

	mu          sync.Mutex
	crumbLoaded bool
	crumbField  string
	crumbValue  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar is copied and given the Client's jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			clone := *hc
			clone.Jar = c.jar
			hc = &clone
		}
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		c.httpClient.Transport = transport
	}
}

// NewClient creates a new Jenkins API client authenticating with basic auth.
// password may be an API token. Cookies are kept so that POSTs carry the
// session a CSRF crumb was issued for.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	// cookiejar.New(nil) never fails.
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		jar:      jar,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JobPath converts a folder-qualified job name into its URL path.
// "folder1/sub/job5" becomes "/job/folder1/job/sub/job/job5".
func JobPath(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			continue
		}
		sb.WriteString("/job/")
		sb.WriteString(url.PathEscape(part))
	}
	return sb.String()
}

// GetVersion returns the server version advertised in the X-Jenkins header.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	_, header, err := c.get(ctx, "version", "/", nil)
	if err != nil {
		return "", err
	}
	version := header.Get("X-Jenkins")
	if version == "" {
		return "", fmt.Errorf("server at %s did not report a Jenkins version", c.baseURL)
	}
	return version, nil
}

// GetJob fetches a job's metadata.
func (c *Client) GetJob(ctx context.Context, job string) (*Job, error) {
	var out Job
	if err := c.getJSON(ctx, "get_job", JobPath(job)+"/api/json", &NotFoundError{Job: job}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBuild fetches a build's metadata.
func (c *Client) GetBuild(ctx context.Context, job string, number int) (*Build, error) {
	var out Build
	path := fmt.Sprintf("%s/%d/api/json", JobPath(job), number)
	if err := c.getJSON(ctx, "get_build", path, &NotFoundError{Job: job, Build: number}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConsoleText fetches the full plain-text console log of a build.
func (c *Client) GetConsoleText(ctx context.Context, job string, number int) (string, error) {
	path := fmt.Sprintf("%s/%d/consoleText", JobPath(job), number)
	body, _, err := c.get(ctx, "get_console", path, &NotFoundError{Job: job, Build: number})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// TriggerBuild queues a build, using buildWithParameters when params is non-empty.
func (c *Client) TriggerBuild(ctx context.Context, job string, params map[string]any) error {
	if len(params) == 0 {
		return c.post(ctx, "trigger_build", JobPath(job)+"/build", nil, &NotFoundError{Job: job})
	}
	form := url.Values{}
	for name, value := range params {
		form.Set(name, FormValue(value))
	}
	return c.post(ctx, "trigger_build", JobPath(job)+"/buildWithParameters", form, &NotFoundError{Job: job})
}

// EnableJob enables a disabled job.
func (c *Client) EnableJob(ctx context.Context, job string) error {
	return c.post(ctx, "enable_job", JobPath(job)+"/enable", nil, &NotFoundError{Job: job})
}

// DisableJob disables a job.
func (c *Client) DisableJob(ctx context.Context, job string) error {
	return c.post(ctx, "disable_job", JobPath(job)+"/disable", nil, &NotFoundError{Job: job})
}

// StopBuild aborts a running build.
func (c *Client) StopBuild(ctx context.Context, job string, number int) error {
	path := fmt.Sprintf("%s/%d/stop", JobPath(job), number)
	return c.post(ctx, "stop_build", path, nil, &NotFoundError{Job: job, Build: number})
}

// ListJobs returns every job on the server, descending into folders.
// Folders appear in the result too, with an empty color.
func (c *Client) ListJobs(ctx context.Context) ([]JobSummary, error) {
	var jobs []JobSummary
	if err := c.listFolder(ctx, "", 0, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) listFolder(ctx context.Context, folder string, depth int, out *[]JobSummary) error {
	path := JobPath(folder) + "/api/json?tree=" + url.QueryEscape(jobsTree)

	var nf *NotFoundError
	if folder != "" {
		nf = &NotFoundError{Job: folder}
	}

	var resp jobsResponse
	if err := c.getJSON(ctx, "list_jobs", path, nf, &resp); err != nil {
		return err
	}

	for _, node := range resp.Jobs {
		fullName := node.FullName
		if fullName == "" {
			fullName = node.Name
			if folder != "" {
				fullName = folder + "/" + node.Name
			}
		}
		*out = append(*out, JobSummary{
			Class:    node.Class,
			Name:     node.Name,
			FullName: fullName,
			URL:      node.URL,
			Color:    node.Color,
		})

		// Folders and multibranch projects carry a jobs list
		if node.Jobs != nil && depth < maxFolderDepth {
			if err := c.listFolder(ctx, fullName, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormValue renders a parameter value for a form-encoded build trigger.
func FormValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, nf *NotFoundError, v any) error {
	body, _, err := c.get(ctx, op, path, nf)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, nf *NotFoundError) ([]byte, http.Header, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(op, req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp, nf); err != nil {
		return nil, nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s response: %v", ErrConnection, op, err)
	}
	return body, resp.Header, nil
}

// post sends a form POST with the CSRF crumb. A 403 rejecting the crumb
// (expired session, restarted server) refetches it and retries once.
func (c *Client) post(ctx context.Context, op, path string, form url.Values, nf *NotFoundError) error {
	err := c.postOnce(ctx, op, path, form, nf)
	if isCrumbRejected(err) {
		c.resetCrumb()
		err = c.postOnce(ctx, op, path, form, nf)
	}
	return err
}

func isCrumbRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Body), "crumb")
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crumbLoaded, c.crumbField, c.crumbValue = false, "", ""
}

func (c *Client) postOnce(ctx context.Context, op, path string, form url.Values, nf *NotFoundError) error {
	field, value, err := c.crumb(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if field != "" {
		req.Header.Set(field, value)
	}

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkResponse(req, resp, nf)
}

// crumb returns the CSRF crumb header, fetching it on first use.
// Servers with CSRF protection disabled answer 404 and get no header.
func (c *Client) crumb(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumbLoaded {
		return c.crumbField, c.crumbValue, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/crumbIssuer/api/json", nil)
	if err != nil {
		return "", "", err
	}
	resp, err := c.do("crumb", req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.crumbLoaded = true
		return "", "", nil
	}
	if err := checkResponse(req, resp, nil); err != nil {
		return "", "", err
	}

	var cr crumbResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", "", fmt.Errorf("failed to decode crumb response: %w", err)
	}
	c.crumbField, c.crumbValue, c.crumbLoaded = cr.CrumbRequestField, cr.Crumb, true
	return c.crumbField, c.crumbValue, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveJenkinsRequest(op, "connection_error", time.Since(start))
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrConnection, req.Method, req.URL.Redacted(), err)
	}
	metrics.ObserveJenkinsRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}

func checkResponse(req *http.Request, resp *http.Response, nf *NotFoundError) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound && nf != nil {
		return nf
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		Body:       strings.TrimSpace(string(body)),
	}
}

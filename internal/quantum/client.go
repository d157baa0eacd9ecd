package quantum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantumtrack/quantumtrack/internal/config"
)

// Factory builds a Service for one user credential. The HTTP handlers and the
// notifier hold a Factory rather than concrete clients so tests can inject
// fakes.
type Factory func(user config.User) Service

// NewFactory returns a Factory for the configured remote endpoint. All
// clients produced by one factory share a single rate limiter so the combined
// request rate to the remote service stays bounded regardless of how many
// users are polled.
func NewFactory(cfg config.QuantumConfig) Factory {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	return func(user config.User) Service {
		return newClient(cfg, user, limiter)
	}
}

// Client talks to the remote runtime REST API on behalf of one user.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(cfg config.QuantumConfig, user config.User, limiter *rate.Limiter) *Client {
	return &Client{
		base:    cfg.Endpoint,
		limiter: limiter,
		http: &http.Client{
			Transport: &authRoundTripper{base: http.DefaultTransport, user: user},
			Timeout:   cfg.Timeout,
		},
	}
}

// authRoundTripper injects the user's credential headers into every request.
type authRoundTripper struct {
	base http.RoundTripper
	user config.User
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "apikey "+t.user.APIKey())
	req.Header.Set("Service-CRN", t.user.Instance)
	return t.base.RoundTrip(req)
}

// Jobs enumerates the user's recent jobs, newest first.
func (c *Client) Jobs(ctx context.Context, f JobFilter) ([]JobHandle, error) {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if !f.CreatedAfter.IsZero() {
		q.Set("created_after", f.CreatedAfter.UTC().Format(time.RFC3339))
	}

	var payload struct {
		Jobs []*restJob `json:"jobs"`
	}
	if err := c.getJSON(ctx, "/v1/jobs", q, &payload); err != nil {
		return nil, fmt.Errorf("quantum: list jobs: %w", err)
	}

	out := make([]JobHandle, 0, len(payload.Jobs))
	for _, j := range payload.Jobs {
		out = append(out, j)
	}
	return out, nil
}

// Backends enumerates the execution resources visible to the user.
func (c *Client) Backends(ctx context.Context) ([]BackendHandle, error) {
	var payload struct {
		Devices []*restBackend `json:"devices"`
	}
	if err := c.getJSON(ctx, "/v1/backends", nil, &payload); err != nil {
		return nil, fmt.Errorf("quantum: list backends: %w", err)
	}

	out := make([]BackendHandle, 0, len(payload.Devices))
	for _, b := range payload.Devices {
		out = append(out, b)
	}
	return out, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Surface a short slice of the body — remote error payloads are the
		// only diagnostic available to operators.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- wire types -------------------------------------------------------------

// restJob decodes one job object. Pointer fields distinguish "absent" from
// "zero" so facet accessors can report ErrUnavailable precisely; the remote
// schema varies across service versions and older records omit whole facets.
type restJob struct {
	ID    *string `json:"id"`
	State *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"state"`
	Backend     *string                `json:"backend"`
	Created     *string                `json:"created"`
	Program     *string                `json:"program_id"`
	TagList     []string               `json:"tags"`
	UsageData   *restUsage             `json:"usage"`
	MetricsData map[string]interface{} `json:"metrics"`
	Queue       *restQueueInfo         `json:"queue_info"`
}

type restUsage struct {
	QuantumSeconds float64 `json:"quantum_seconds"`
	Seconds        float64 `json:"seconds"`
}

type restQueueInfo struct {
	Position           *int    `json:"position"`
	EstimatedStartTime *string `json:"estimated_start_time"`
}

func (j *restJob) JobID() (string, error) {
	if j.ID == nil {
		return "", ErrUnavailable
	}
	return *j.ID, nil
}

func (j *restJob) Status() (string, error) {
	if j.State == nil || j.State.Status == "" {
		return "", ErrUnavailable
	}
	return j.State.Status, nil
}

func (j *restJob) BackendName() (string, error) {
	if j.Backend == nil || *j.Backend == "" {
		return "", ErrUnavailable
	}
	return *j.Backend, nil
}

func (j *restJob) CreationDate() (time.Time, error) {
	if j.Created == nil {
		return time.Time{}, ErrUnavailable
	}
	ts, err := time.Parse(time.RFC3339, *j.Created)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse creation date: %w", err)
	}
	return ts, nil
}

func (j *restJob) ProgramID() (string, error) {
	if j.Program == nil || *j.Program == "" {
		return "", ErrUnavailable
	}
	return *j.Program, nil
}

func (j *restJob) Tags() ([]string, error) {
	if j.TagList == nil {
		return nil, ErrUnavailable
	}
	return j.TagList, nil
}

func (j *restJob) Usage() (*Usage, error) {
	if j.UsageData == nil {
		return nil, nil
	}
	return &Usage{
		QuantumSeconds: j.UsageData.QuantumSeconds,
		Seconds:        j.UsageData.Seconds,
	}, nil
}

func (j *restJob) Metrics() (map[string]interface{}, error) {
	if j.MetricsData == nil {
		return nil, nil
	}
	return j.MetricsData, nil
}

func (j *restJob) QueueInfo() (*QueueInfo, error) {
	if j.Queue == nil {
		return nil, nil
	}
	qi := &QueueInfo{Position: j.Queue.Position}
	if j.Queue.EstimatedStartTime != nil {
		ts, err := time.Parse(time.RFC3339, *j.Queue.EstimatedStartTime)
		if err != nil {
			return nil, fmt.Errorf("parse estimated start time: %w", err)
		}
		qi.EstimatedStartTime = &ts
	}
	return qi, nil
}

func (j *restJob) ErrorMessage() (string, error) {
	if j.State == nil {
		return "", nil
	}
	return j.State.Reason, nil
}

// restBackend decodes one backend object.
type restBackend struct {
	BackendName string `json:"name"`
	RawStatus   *struct {
		Operational bool   `json:"operational"`
		StatusMsg   string `json:"status_msg"`
		PendingJobs int    `json:"pending_jobs"`
	} `json:"status"`
	RawProps *struct {
		QubitCount     int    `json:"n_qubits"`
		LastUpdateDate string `json:"last_update_date"`
	} `json:"properties"`
	RawConfig *struct {
		MaxShots    int     `json:"max_shots"`
		CouplingMap [][]int `json:"coupling_map"`
	} `json:"configuration"`
}

func (b *restBackend) Name() (string, error) {
	if b.BackendName == "" {
		return "", ErrUnavailable
	}
	return b.BackendName, nil
}

func (b *restBackend) Status() (*BackendStatus, error) {
	if b.RawStatus == nil {
		return nil, ErrUnavailable
	}
	return &BackendStatus{
		Operational: b.RawStatus.Operational,
		StatusMsg:   b.RawStatus.StatusMsg,
		PendingJobs: b.RawStatus.PendingJobs,
	}, nil
}

func (b *restBackend) Properties() (*BackendProperties, error) {
	if b.RawProps == nil {
		return nil, ErrUnavailable
	}
	props := &BackendProperties{QubitCount: b.RawProps.QubitCount}
	if b.RawProps.LastUpdateDate != "" {
		if ts, err := time.Parse(time.RFC3339, b.RawProps.LastUpdateDate); err == nil {
			props.LastUpdateDate = ts
		}
	}
	return props, nil
}

func (b *restBackend) Configuration() (*BackendConfiguration, error) {
	if b.RawConfig == nil {
		return nil, ErrUnavailable
	}
	return &BackendConfiguration{
		MaxShots:        b.RawConfig.MaxShots,
		CouplingMapSize: len(b.RawConfig.CouplingMap),
	}, nil
}

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/analytics"
	"github.com/quantumtrack/quantumtrack/internal/config"
	"github.com/quantumtrack/quantumtrack/internal/metrics"
	"github.com/quantumtrack/quantumtrack/internal/normalize"
	"github.com/quantumtrack/quantumtrack/internal/quantum"
	"github.com/quantumtrack/quantumtrack/internal/registry"
)

// Version reported by / and /health.
const Version = "2.2"

// featureCount is the number of analytic features the API serves.
const featureCount = 10

// Per-endpoint fetch windows against the remote service.
const (
	defaultJobsLimit    = 10
	maxJobsLimit        = 100
	statusFetchLimit    = 200
	errorsFetchLimit    = 100
	resourcesFetchLimit = 50
	trendsFetchLimit    = 300
	crossUserFetchLimit = 50
	usageFetchLimit     = 100
	failuresFetchLimit  = 150

	defaultStatusDays = 30
	defaultTrendDays  = 90
	maxDays           = 365
)

// Handler serves the REST surface: job views, the ten analytic endpoints and
// the registry utilities.
type Handler struct {
	registry *registry.Registry
	factory  quantum.Factory
	mux      *http.ServeMux

	now func() time.Time // injectable for deterministic tests
}

// New creates a Handler and registers all routes. notifications, when
// non-nil, is mounted at /ws/notifications.
func New(reg *registry.Registry, factory quantum.Factory, notifications http.Handler) *Handler {
	h := &Handler{
		registry: reg,
		factory:  factory,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	h.mux.HandleFunc("/", h.home)
	h.mux.HandleFunc("/health", get(h.health))
	h.mux.HandleFunc("/users", get(h.users))
	h.mux.Handle("/metrics", metrics.Handler())
	h.mux.HandleFunc("/jobs/", get(h.jobs)) // subtree — extracts {user}
	h.mux.HandleFunc("/analytics/job-status/", get(h.jobStatus))
	h.mux.HandleFunc("/analytics/errors/", get(h.errors))
	h.mux.HandleFunc("/analytics/resources/", get(h.resources))
	h.mux.HandleFunc("/analytics/trends/", get(h.trends))
	h.mux.HandleFunc("/analytics/backend-usage/", get(h.backendUsage))
	h.mux.HandleFunc("/analytics/failures/", get(h.failures))
	h.mux.HandleFunc("/analytics/backend-performance", get(h.backendPerformance))
	h.mux.HandleFunc("/analytics/all-users", get(h.allUsers))
	h.mux.HandleFunc("/recommendations/smart-scheduler", get(h.smartScheduler))
	h.mux.HandleFunc("/heatmap/backends", get(h.heatmap))
	if notifications != nil {
		h.mux.Handle("/ws/notifications", notifications)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	metrics.RequestsTotal.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(rec.code)).Inc()
}

// --- route handlers ---------------------------------------------------------

// home returns GET / — the service banner. Unmatched paths fall through to
// this handler and get a JSON 404.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, homeResponse{
		Message: "Quantum Job Tracker Backend is Running",
		Version: Version,
	})
}

// health returns GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		Version:           Version,
		FeaturesAvailable: featureCount,
		TotalUsers:        h.registry.Count(),
		Timestamp:         h.now().Format(time.RFC3339),
	})
}

// users returns GET /users — the registered user names.
func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	jsonResp(w, http.StatusOK, usersResponse{TotalUsers: len(names), Users: names})
}

// jobs returns GET /jobs/{user}?limit=N — the raw normalized job list.
func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/jobs/")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultJobsLimit, maxJobsLimit)
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{Limit: limit})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, jobsResponse{
		User:      name,
		TotalJobs: len(records),
		Jobs:      records,
	})
}

// jobStatus returns GET /analytics/job-status/{user}?days=N.
func (h *Handler) jobStatus(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/job-status/")
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days", defaultStatusDays, maxDays)
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{
		Limit:        statusFetchLimit,
		CreatedAfter: h.now().AddDate(0, 0, -days),
	})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, statusResponse{
		User:         name,
		StatusReport: analytics.StatusDistribution(records, days),
	})
}

// errors returns GET /analytics/errors/{user}.
func (h *Handler) errors(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/errors/")
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{Limit: errorsFetchLimit})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, errorAnalysisResponse{
		User:          name,
		ErrorAnalysis: analytics.ErrorAnalysis(records),
	})
}

// resources returns GET /analytics/resources/{user}.
func (h *Handler) resources(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/resources/")
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{Limit: resourcesFetchLimit})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, resourceResponse{
		User:             name,
		ResourceAnalysis: analytics.ResourceMeter(records),
	})
}

// trends returns GET /analytics/trends/{user}?days=N.
func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/trends/")
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days", defaultTrendDays, maxDays)
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{
		Limit:        trendsFetchLimit,
		CreatedAfter: h.now().AddDate(0, 0, -days),
	})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, trendsResponse{
		User:           name,
		TrendsAnalysis: analytics.TrendAnalysis(records, days),
	})
}

// backendUsage returns GET /analytics/backend-usage/{user}.
func (h *Handler) backendUsage(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/backend-usage/")
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{Limit: usageFetchLimit})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, backendUsageResponse{
		User:           name,
		BackendMonitor: analytics.BackendUsageMonitor(records),
	})
}

// failures returns GET /analytics/failures/{user}.
func (h *Handler) failures(w http.ResponseWriter, r *http.Request) {
	name, user, ok := h.userParam(w, r, "/analytics/failures/")
	if !ok {
		return
	}

	records, err := h.fetchRecords(r.Context(), user, quantum.JobFilter{Limit: failuresFetchLimit})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, failuresResponse{
		User:            name,
		FailureAnalysis: analytics.FailureInsights(records),
	})
}

// allUsers returns GET /analytics/all-users — the cross-user activity view.
// Each user's fetch is an isolated fault domain; a failed user appears as an
// embedded error in the response instead of failing the request.
func (h *Handler) allUsers(w http.ResponseWriter, r *http.Request) {
	users := h.registry.All()
	segments := make([]analytics.UserSegment, 0, len(users))
	for _, u := range users {
		records, err := h.fetchRecords(r.Context(), u, quantum.JobFilter{Limit: crossUserFetchLimit})
		segments = append(segments, analytics.UserSegment{Name: u.Name, Records: records, Err: err})
	}
	jsonResp(w, http.StatusOK, analytics.CrossUserActivity(segments))
}

// backendPerformance returns GET /analytics/backend-performance.
func (h *Handler) backendPerformance(w http.ResponseWriter, r *http.Request) {
	backends, err := h.fetchBackends(r.Context())
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, analytics.BackendPerformance(backends, h.now()))
}

// smartScheduler returns GET /recommendations/smart-scheduler.
func (h *Handler) smartScheduler(w http.ResponseWriter, r *http.Request) {
	backends, err := h.fetchBackends(r.Context())
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, analytics.SmartScheduler(backends, h.now()))
}

// heatmap returns GET /heatmap/backends.
func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	backends, err := h.fetchBackends(r.Context())
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, analytics.BackendHeatmap(backends, h.now()))
}

// --- helpers ----------------------------------------------------------------

// userParam extracts the {user} path segment after prefix and resolves it
// against the registry. Writes the 404 itself when the user is unknown.
func (h *Handler) userParam(w http.ResponseWriter, r *http.Request, prefix string) (string, config.User, bool) {
	name := strings.TrimPrefix(r.URL.Path, prefix)
	if name == "" || strings.Contains(name, "/") {
		jsonErr(w, http.StatusNotFound, "User not found")
		return "", config.User{}, false
	}
	user, ok := h.registry.Lookup(name)
	if !ok {
		jsonErr(w, http.StatusNotFound, "User not found")
		return "", config.User{}, false
	}
	return name, user, true
}

// queryInt parses an integer query parameter in the range [1, max]. Writes
// the 400 itself on a malformed or out-of-range value.
func queryInt(w http.ResponseWriter, r *http.Request, param string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > max {
		jsonErr(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer in [1, %d]", param, max))
		return 0, false
	}
	return v, true
}

// fetchRecords queries one user's jobs and normalizes every handle. The
// remote call is the only failure path; normalization never fails.
func (h *Handler) fetchRecords(ctx context.Context, user config.User, filter quantum.JobFilter) ([]normalize.JobRecord, error) {
	jobs, err := h.factory(user).Jobs(ctx, filter)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		return nil, err
	}
	records := make([]normalize.JobRecord, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, normalize.Job(job))
	}
	return records, nil
}

// fetchBackends enumerates the fleet using the first registered credential.
func (h *Handler) fetchBackends(ctx context.Context) ([]normalize.BackendRecord, error) {
	user, ok := h.registry.First()
	if !ok {
		return nil, fmt.Errorf("no users configured")
	}
	handles, err := h.factory(user).Backends(ctx)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		return nil, err
	}
	records := make([]normalize.BackendRecord, 0, len(handles))
	for _, b := range handles {
		records = append(records, normalize.Backend(b))
	}
	return records, nil
}

// get rejects every method other than GET before invoking fn.
func get(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the WebSocket upgrade
// keeps working behind the request counter.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// routeLabel collapses per-user paths to their route so the request counter
// stays low-cardinality.
func routeLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	switch parts[0] {
	case "jobs":
		return "/jobs/{user}"
	case "analytics":
		if len(parts) > 1 {
			switch parts[1] {
			case "job-status", "errors", "resources", "trends", "backend-usage", "failures":
				return "/analytics/" + parts[1] + "/{user}"
			}
			return "/analytics/" + parts[1]
		}
	}
	return path
}

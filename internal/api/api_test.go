package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/config"
	"github.com/quantumtrack/quantumtrack/internal/quantum"
	"github.com/quantumtrack/quantumtrack/internal/registry"
)

// fakeJob answers the identity facets and reports everything else absent.
type fakeJob struct {
	id, status, backend string
	created             time.Time
	seconds             float64
}

func (j fakeJob) JobID() (string, error)       { return j.id, nil }
func (j fakeJob) Status() (string, error)      { return j.status, nil }
func (j fakeJob) BackendName() (string, error) { return j.backend, nil }
func (j fakeJob) ProgramID() (string, error)   { return "", quantum.ErrUnavailable }
func (j fakeJob) Tags() ([]string, error)      { return nil, quantum.ErrUnavailable }
func (j fakeJob) CreationDate() (time.Time, error) {
	if j.created.IsZero() {
		return time.Time{}, quantum.ErrUnavailable
	}
	return j.created, nil
}
func (j fakeJob) Usage() (*quantum.Usage, error) {
	if j.seconds == 0 {
		return nil, nil
	}
	return &quantum.Usage{QuantumSeconds: j.seconds / 2, Seconds: j.seconds}, nil
}
func (j fakeJob) Metrics() (map[string]interface{}, error) { return nil, nil }
func (j fakeJob) QueueInfo() (*quantum.QueueInfo, error)   { return nil, nil }
func (j fakeJob) ErrorMessage() (string, error)            { return "", nil }

// fakeBackend answers a full status and optional properties.
type fakeBackend struct {
	name        string
	operational bool
	pending     int
	hasProps    bool
}

func (b fakeBackend) Name() (string, error) { return b.name, nil }
func (b fakeBackend) Status() (*quantum.BackendStatus, error) {
	return &quantum.BackendStatus{
		Operational: b.operational,
		StatusMsg:   "active",
		PendingJobs: b.pending,
	}, nil
}
func (b fakeBackend) Properties() (*quantum.BackendProperties, error) {
	if !b.hasProps {
		return nil, quantum.ErrUnavailable
	}
	return &quantum.BackendProperties{QubitCount: 127}, nil
}
func (b fakeBackend) Configuration() (*quantum.BackendConfiguration, error) {
	return nil, quantum.ErrUnavailable
}

// fakeService is one user's scripted remote service.
type fakeService struct {
	jobs     []quantum.JobHandle
	backends []quantum.BackendHandle
	err      error

	lastFilter quantum.JobFilter
}

func (s *fakeService) Jobs(ctx context.Context, f quantum.JobFilter) ([]quantum.JobHandle, error) {
	s.lastFilter = f
	return s.jobs, s.err
}

func (s *fakeService) Backends(ctx context.Context) ([]quantum.BackendHandle, error) {
	return s.backends, s.err
}

func testHandler(services map[string]*fakeService, names ...string) *Handler {
	users := make([]config.User, 0, len(names))
	for _, n := range names {
		users = append(users, config.User{Name: n, APIKeyEnv: "X", Instance: "crn:test"})
	}
	factory := func(u config.User) quantum.Service { return services[u.Name] }
	h := New(registry.New(users), factory, nil)
	h.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s %s: invalid JSON body %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, body
}

func TestHome(t *testing.T) {
	h := testHandler(nil)
	rec, body := do(t, h, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["version"] != Version {
		t.Errorf("version = %v", body["version"])
	}
}

func TestHome_UnknownPath(t *testing.T) {
	h := testHandler(nil)
	rec, _ := do(t, h, http.MethodGet, "/no-such-route")
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}

func TestUsers(t *testing.T) {
	h := testHandler(nil, "Varsha", "Hema")
	rec, body := do(t, h, http.MethodGet, "/users")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["total_users"] != float64(2) {
		t.Errorf("total_users = %v", body["total_users"])
	}
	users := body["users"].([]interface{})
	if len(users) != 2 || users[0] != "Hema" {
		t.Errorf("users = %v, want sorted names", users)
	}
}

func TestUsers_MethodNotAllowed(t *testing.T) {
	h := testHandler(nil)
	rec, _ := do(t, h, http.MethodPost, "/users")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := testHandler(nil, "Varsha")
	rec, body := do(t, h, http.MethodGet, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["status"] != "healthy" || body["features_available"] != float64(10) {
		t.Errorf("body = %v", body)
	}
	if body["timestamp"] != "2025-03-01T12:00:00Z" {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
}

func TestJobs_UnknownUser(t *testing.T) {
	h := testHandler(nil, "Varsha")
	rec, body := do(t, h, http.MethodGet, "/jobs/nobody")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if body["error"] != "User not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestJobs_CaseInsensitiveUserAndLimit(t *testing.T) {
	svc := &fakeService{jobs: []quantum.JobHandle{
		fakeJob{id: "j1", status: "DONE", backend: "ibm_a"},
	}}
	h := testHandler(map[string]*fakeService{"Varsha": svc}, "Varsha")

	rec, body := do(t, h, http.MethodGet, "/jobs/VARSHA?limit=3")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", rec.Code, body)
	}
	if svc.lastFilter.Limit != 3 {
		t.Errorf("upstream limit = %d, want 3", svc.lastFilter.Limit)
	}
	if body["user"] != "VARSHA" || body["total_jobs"] != float64(1) {
		t.Errorf("envelope = %v", body)
	}
	jobs := body["jobs"].([]interface{})
	rec0 := jobs[0].(map[string]interface{})
	if rec0["job_id"] != "j1" || rec0["program_id"] != "Unknown" {
		t.Errorf("record = %v", rec0)
	}
}

func TestJobs_LimitOutOfRange(t *testing.T) {
	h := testHandler(map[string]*fakeService{"Varsha": {}}, "Varsha")

	for _, q := range []string{"limit=101", "limit=0", "limit=abc"} {
		rec, _ := do(t, h, http.MethodGet, "/jobs/varsha?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: code = %d, want 400", q, rec.Code)
		}
	}
}

func TestJobStatus_DaysCutoffAndEnvelope(t *testing.T) {
	svc := &fakeService{jobs: []quantum.JobHandle{
		fakeJob{id: "j1", status: "DONE", backend: "ibm_a", seconds: 10},
	}}
	h := testHandler(map[string]*fakeService{"Varsha": svc}, "Varsha")

	rec, body := do(t, h, http.MethodGet, "/analytics/job-status/varsha?days=7")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", rec.Code, body)
	}
	wantCutoff := time.Date(2025, 2, 22, 12, 0, 0, 0, time.UTC)
	if !svc.lastFilter.CreatedAfter.Equal(wantCutoff) {
		t.Errorf("CreatedAfter = %v, want %v", svc.lastFilter.CreatedAfter, wantCutoff)
	}
	if body["analysis_period_days"] != float64(7) || body["success_rate"] != float64(100) {
		t.Errorf("body = %v", body)
	}
}

func TestJobStatus_DaysOutOfRange(t *testing.T) {
	h := testHandler(map[string]*fakeService{"Varsha": {}}, "Varsha")
	rec, _ := do(t, h, http.MethodGet, "/analytics/job-status/varsha?days=366")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
}

func TestUpstreamFailurePassesThrough(t *testing.T) {
	svc := &fakeService{err: errors.New("rate limited by upstream")}
	h := testHandler(map[string]*fakeService{"Varsha": svc}, "Varsha")

	rec, body := do(t, h, http.MethodGet, "/analytics/errors/varsha")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rec.Code)
	}
	if body["error"] != "rate limited by upstream" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAllUsers_IsolatesFailedUser(t *testing.T) {
	services := map[string]*fakeService{
		"Broken": {err: errors.New("invalid api key")},
		"Varsha": {jobs: []quantum.JobHandle{
			fakeJob{id: "j1", status: "DONE", backend: "ibm_a"},
		}},
	}
	h := testHandler(services, "Broken", "Varsha")

	rec, body := do(t, h, http.MethodGet, "/analytics/all-users")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 despite the failed user", rec.Code)
	}
	activity := body["user_activity"].(map[string]interface{})
	broken := activity["Broken"].(map[string]interface{})
	if broken["error"] != "invalid api key" {
		t.Errorf("broken user = %v", broken)
	}
	varsha := activity["Varsha"].(map[string]interface{})
	if varsha["total_jobs"] != float64(1) {
		t.Errorf("varsha = %v", varsha)
	}
}

func TestSmartScheduler(t *testing.T) {
	svc := &fakeService{backends: []quantum.BackendHandle{
		fakeBackend{name: "ibm_a", operational: true, pending: 0, hasProps: true},
		fakeBackend{name: "ibm_down", operational: false},
	}}
	h := testHandler(map[string]*fakeService{"Varsha": svc}, "Varsha")

	rec, body := do(t, h, http.MethodGet, "/recommendations/smart-scheduler")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", rec.Code, body)
	}
	best := body["best_choice"].(map[string]interface{})
	if best["backend_name"] != "ibm_a" || best["recommendation_score"] != float64(90) {
		t.Errorf("best_choice = %v", best)
	}
	if body["total_backends_analyzed"] != float64(1) {
		t.Errorf("total_backends_analyzed = %v", body["total_backends_analyzed"])
	}
}

func TestHeatmap(t *testing.T) {
	svc := &fakeService{backends: []quantum.BackendHandle{
		fakeBackend{name: "ibm_a", operational: true, pending: 6},
	}}
	h := testHandler(map[string]*fakeService{"Varsha": svc}, "Varsha")

	rec, body := do(t, h, http.MethodGet, "/heatmap/backends")

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %v", rec.Code, body)
	}
	cells := body["heatmap"].([]interface{})
	cell := cells[0].(map[string]interface{})
	if cell["load_level"] != "red" {
		t.Errorf("cell = %v", cell)
	}
}

func TestBackendPerformance_NoUsers(t *testing.T) {
	h := testHandler(nil)
	rec, _ := do(t, h, http.MethodGet, "/analytics/backend-performance")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500 with no registered users", rec.Code)
	}
}

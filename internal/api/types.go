package api

import (
	"github.com/quantumtrack/quantumtrack/internal/analytics"
	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// homeResponse answers GET /.
type homeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// healthResponse answers GET /health.
type healthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	FeaturesAvailable int    `json:"features_available"`
	TotalUsers        int    `json:"total_users"`
	Timestamp         string `json:"timestamp"`
}

// usersResponse answers GET /users.
type usersResponse struct {
	TotalUsers int      `json:"total_users"`
	Users      []string `json:"users"`
}

// jobsResponse answers GET /jobs/{user}.
type jobsResponse struct {
	User      string                `json:"user"`
	TotalJobs int                   `json:"total_jobs"`
	Jobs      []normalize.JobRecord `json:"jobs"`
}

// statusResponse wraps the status view with the requested user.
type statusResponse struct {
	User string `json:"user"`
	analytics.StatusReport
}

// errorAnalysisResponse wraps the error view with the requested user.
type errorAnalysisResponse struct {
	User          string                `json:"user"`
	ErrorAnalysis analytics.ErrorReport `json:"error_analysis"`
}

// resourceResponse wraps the resource view with the requested user.
type resourceResponse struct {
	User             string                   `json:"user"`
	ResourceAnalysis analytics.ResourceReport `json:"resource_analysis"`
}

// trendsResponse wraps the trend view with the requested user.
type trendsResponse struct {
	User           string                `json:"user"`
	TrendsAnalysis analytics.TrendReport `json:"trends_analysis"`
}

// backendUsageResponse wraps the backend-usage view with the requested user.
type backendUsageResponse struct {
	User           string                       `json:"user"`
	BackendMonitor analytics.BackendUsageReport `json:"backend_monitor"`
}

// failuresResponse wraps the failure view with the requested user.
type failuresResponse struct {
	User            string                  `json:"user"`
	FailureAnalysis analytics.FailureReport `json:"failure_analysis"`
}

package analytics

import "github.com/quantumtrack/quantumtrack/internal/normalize"

// BackendReliability tracks the failure share of one backend.
type BackendReliability struct {
	Total              int     `json:"total"`
	Failed             int     `json:"failed"`
	ReliabilityPercent float64 `json:"reliability_percent"`
}

// CommonError is one failed job with a recorded error message.
type CommonError struct {
	JobID   string `json:"job_id"`
	Error   string `json:"error"`
	Backend string `json:"backend"`
}

// ErrorReport is the error-pattern view over one user's jobs.
type ErrorReport struct {
	TotalJobs          int                           `json:"total_jobs"`
	FailedJobs         int                           `json:"failed_jobs"`
	ErrorTypes         map[string]int                `json:"error_types"`
	BackendReliability map[string]BackendReliability `json:"backend_reliability"`
	CommonErrors       []CommonError                 `json:"common_errors"`
	OverallErrorRate   float64                       `json:"overall_error_rate"`
}

// ErrorAnalysis counts failures (ERROR or CANCELLED) per backend and per
// literal error-message string. A backend with zero jobs never occurs, but
// the reliability formula still guards the division: an empty input yields
// an error rate of 0.
func ErrorAnalysis(records []normalize.JobRecord) ErrorReport {
	rep := ErrorReport{
		ErrorTypes:         map[string]int{},
		BackendReliability: map[string]BackendReliability{},
		CommonErrors:       []CommonError{},
	}

	for _, rec := range records {
		rep.TotalJobs++
		rel := rep.BackendReliability[rec.Backend]
		rel.Total++

		if rec.Status == "ERROR" || rec.Status == "CANCELLED" {
			rep.FailedJobs++
			rel.Failed++
			if rec.ErrorMessage != nil {
				rep.ErrorTypes[*rec.ErrorMessage]++
				rep.CommonErrors = append(rep.CommonErrors, CommonError{
					JobID:   rec.JobID,
					Error:   *rec.ErrorMessage,
					Backend: rec.Backend,
				})
			}
		}
		rep.BackendReliability[rec.Backend] = rel
	}

	for name, rel := range rep.BackendReliability {
		rel.ReliabilityPercent = 100
		if rel.Total > 0 {
			rel.ReliabilityPercent = float64(rel.Total-rel.Failed) / float64(rel.Total) * 100
		}
		rep.BackendReliability[name] = rel
	}
	if rep.TotalJobs > 0 {
		rep.OverallErrorRate = float64(rep.FailedJobs) / float64(rep.TotalJobs) * 100
	}
	return rep
}

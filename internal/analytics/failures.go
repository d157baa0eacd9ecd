package analytics

import (
	"fmt"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// FailedJob is the full detail of one failed record.
type FailedJob struct {
	JobID        string  `json:"job_id"`
	Backend      string  `json:"backend"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message"`
	CreationDate string  `json:"creation_date"`
}

// FailurePatterns counts failures along three dimensions.
type FailurePatterns struct {
	ByBackend     map[string]int `json:"by_backend"`
	ByErrorType   map[string]int `json:"by_error_type"`
	ByTimePattern map[string]int `json:"by_time_pattern"`
}

// UnreliableBackend names the backend with the most failures.
type UnreliableBackend struct {
	Name         string `json:"name"`
	FailureCount int    `json:"failure_count"`
}

// FailureHighlights is the derived-insight block of a FailureReport.
type FailureHighlights struct {
	MostUnreliableBackend interface{}    `json:"most_unreliable_backend"`
	CommonFailureReasons  []CountedValue `json:"common_failure_reasons"`
	FailureRateTrend      []interface{}  `json:"failure_rate_trend"`
}

// FailureReport is the failure-insight view over one user's jobs.
type FailureReport struct {
	TotalJobsAnalyzed  int               `json:"total_jobs_analyzed"`
	FailedJobs         []FailedJob       `json:"failed_jobs"`
	FailurePatterns    FailurePatterns   `json:"failure_patterns"`
	FailureInsights    FailureHighlights `json:"failure_insights"`
	OverallFailureRate float64           `json:"overall_failure_rate"`
}

// topFailureReasons caps the common-failure-reasons list.
const topFailureReasons = 5

// FailureInsights collects every failed record (ERROR, CANCELLED or FAILED)
// and counts failures by backend, by literal error message and by hour of
// day. Hours come from the parsed creation timestamp in its own offset;
// undated failures are skipped from the time pattern only.
func FailureInsights(records []normalize.JobRecord) FailureReport {
	rep := FailureReport{
		FailedJobs: []FailedJob{},
		FailurePatterns: FailurePatterns{
			ByBackend:     map[string]int{},
			ByErrorType:   map[string]int{},
			ByTimePattern: map[string]int{},
		},
		FailureInsights: FailureHighlights{
			MostUnreliableBackend: "",
			CommonFailureReasons:  []CountedValue{},
			FailureRateTrend:      []interface{}{},
		},
	}

	for _, rec := range records {
		rep.TotalJobsAnalyzed++
		if !rec.Failed() {
			continue
		}

		rep.FailedJobs = append(rep.FailedJobs, FailedJob{
			JobID:        rec.JobID,
			Backend:      rec.Backend,
			Status:       rec.Status,
			ErrorMessage: rec.ErrorMessage,
			CreationDate: rec.CreationDate,
		})
		rep.FailurePatterns.ByBackend[rec.Backend]++
		if rec.ErrorMessage != nil {
			rep.FailurePatterns.ByErrorType[*rec.ErrorMessage]++
		}
		if ts, ok := parseCreationDate(rec.CreationDate); ok {
			rep.FailurePatterns.ByTimePattern[fmt.Sprintf("hour_%d", ts.Hour())]++
		}
	}

	if name, n, ok := argmax(rep.FailurePatterns.ByBackend); ok {
		rep.FailureInsights.MostUnreliableBackend = UnreliableBackend{Name: name, FailureCount: n}
	}
	rep.FailureInsights.CommonFailureReasons = topCounted(rep.FailurePatterns.ByErrorType, topFailureReasons)
	if rep.TotalJobsAnalyzed > 0 {
		rep.OverallFailureRate = float64(len(rep.FailedJobs)) / float64(rep.TotalJobsAnalyzed) * 100
	}
	return rep
}

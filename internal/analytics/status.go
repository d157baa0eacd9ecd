package analytics

import "github.com/quantumtrack/quantumtrack/internal/normalize"

// StatusSuccess is the terminal state counted toward the success rate.
const StatusSuccess = "DONE"

// StatusReport summarizes how one user's jobs are distributed across states.
type StatusReport struct {
	AnalysisPeriodDays   int            `json:"analysis_period_days"`
	TotalJobs            int            `json:"total_jobs"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	SuccessRate          float64        `json:"success_rate"`
	AverageExecutionTime float64        `json:"average_execution_time"`
}

// StatusDistribution counts records per status and computes the success
// rate over all records. The execution-time average runs over records with
// a non-zero usage.seconds only; jobs that reported zero or no usage do not
// dilute the mean. Zero records yields zeroes, never a division by zero.
func StatusDistribution(records []normalize.JobRecord, periodDays int) StatusReport {
	counts := map[string]int{}
	var execTotal float64
	execN := 0

	for _, rec := range records {
		counts[rec.Status]++
		if secs := rec.Usage["seconds"]; secs != 0 {
			execTotal += secs
			execN++
		}
	}

	rep := StatusReport{
		AnalysisPeriodDays: periodDays,
		TotalJobs:          len(records),
		StatusDistribution: counts,
	}
	if len(records) > 0 {
		rep.SuccessRate = float64(counts[StatusSuccess]) / float64(len(records)) * 100
	}
	if execN > 0 {
		rep.AverageExecutionTime = execTotal / float64(execN)
	}
	return rep
}

package analytics

import "github.com/quantumtrack/quantumtrack/internal/normalize"

// BackendStats tracks one backend's share of a user's jobs.
type BackendStats struct {
	JobCount            int     `json:"job_count"`
	SuccessCount        int     `json:"success_count"`
	TotalQuantumSeconds float64 `json:"total_quantum_seconds"`
	AvgExecutionTime    float64 `json:"avg_execution_time"`
	SuccessRate         float64 `json:"success_rate"`
}

// TopBackend names a backend together with its job count.
type TopBackend struct {
	Name     string `json:"name"`
	JobCount int    `json:"job_count"`
}

// UsageSummary identifies the extremes of the usage distribution.
type UsageSummary struct {
	TotalBackendsUsed int         `json:"total_backends_used"`
	MostUsedBackend   interface{} `json:"most_used_backend"`
	LeastUsedBackend  interface{} `json:"least_used_backend"`
	Recommendation    string      `json:"recommendation"`
}

// BackendUsageReport is the backend-usage view over one user's jobs.
type BackendUsageReport struct {
	BackendUsageStats map[string]BackendStats `json:"backend_usage_stats"`
	UsageSummary      UsageSummary            `json:"usage_summary"`
}

// BackendUsageMonitor groups records by backend and computes per-backend
// success rates and execution-time means. Quantum seconds and the mean's
// denominator only count records that reported a non-zero value. Most and
// least used resolve ties to the lexicographically smallest backend name.
func BackendUsageMonitor(records []normalize.JobRecord) BackendUsageReport {
	rep := BackendUsageReport{
		BackendUsageStats: map[string]BackendStats{},
		UsageSummary:      UsageSummary{MostUsedBackend: "", LeastUsedBackend: ""},
	}
	jobCounts := map[string]int{}
	execTotals := map[string]float64{}
	execCounts := map[string]int{}

	for _, rec := range records {
		stats := rep.BackendUsageStats[rec.Backend]
		stats.JobCount++
		jobCounts[rec.Backend]++

		if rec.Status == StatusSuccess {
			stats.SuccessCount++
		}
		if q := rec.Usage["quantum_seconds"]; q != 0 {
			stats.TotalQuantumSeconds += q
		}
		if e := rec.Usage["seconds"]; e != 0 {
			execTotals[rec.Backend] += e
			execCounts[rec.Backend]++
		}
		rep.BackendUsageStats[rec.Backend] = stats
	}

	for name, stats := range rep.BackendUsageStats {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.JobCount) * 100
		if n := execCounts[name]; n > 0 {
			stats.AvgExecutionTime = execTotals[name] / float64(n)
		}
		rep.BackendUsageStats[name] = stats
	}

	rep.UsageSummary.TotalBackendsUsed = len(rep.BackendUsageStats)
	if name, n, ok := argmax(jobCounts); ok {
		rep.UsageSummary.MostUsedBackend = TopBackend{Name: name, JobCount: n}
	}
	if name, n, ok := argmin(jobCounts); ok {
		rep.UsageSummary.LeastUsedBackend = TopBackend{Name: name, JobCount: n}
	}
	return rep
}

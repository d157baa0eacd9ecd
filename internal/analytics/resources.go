package analytics

import "github.com/quantumtrack/quantumtrack/internal/normalize"

// ResourceUsage is the metered consumption of one job.
type ResourceUsage struct {
	JobID            string  `json:"job_id"`
	Backend          string  `json:"backend"`
	QuantumSeconds   float64 `json:"quantum_seconds"`
	ExecutionSeconds float64 `json:"execution_seconds"`
	Status           string  `json:"status"`
}

// AverageResources holds per-job means over the metered jobs.
type AverageResources struct {
	QuantumSeconds   float64 `json:"quantum_seconds"`
	ExecutionSeconds float64 `json:"execution_seconds"`
}

// ResourceReport is the resource-metering view over one user's jobs.
type ResourceReport struct {
	TotalQuantumSeconds  float64          `json:"total_quantum_seconds"`
	TotalExecutionTime   float64          `json:"total_execution_time"`
	JobsAnalyzed         int              `json:"jobs_analyzed"`
	ResourceDistribution []ResourceUsage  `json:"resource_distribution"`
	AverageResources     AverageResources `json:"average_resources"`
}

// ResourceMeter sums quantum and wall-clock seconds over records that
// carried usage data. Records without usage are skipped entirely and do not
// count toward JobsAnalyzed or the averages.
func ResourceMeter(records []normalize.JobRecord) ResourceReport {
	rep := ResourceReport{ResourceDistribution: []ResourceUsage{}}

	for _, rec := range records {
		if !rec.HasUsage() {
			continue
		}
		q := rec.Usage["quantum_seconds"]
		e := rec.Usage["seconds"]

		rep.TotalQuantumSeconds += q
		rep.TotalExecutionTime += e
		rep.JobsAnalyzed++
		rep.ResourceDistribution = append(rep.ResourceDistribution, ResourceUsage{
			JobID:            rec.JobID,
			Backend:          rec.Backend,
			QuantumSeconds:   q,
			ExecutionSeconds: e,
			Status:           rec.Status,
		})
	}

	if rep.JobsAnalyzed > 0 {
		rep.AverageResources.QuantumSeconds = rep.TotalQuantumSeconds / float64(rep.JobsAnalyzed)
		rep.AverageResources.ExecutionSeconds = rep.TotalExecutionTime / float64(rep.JobsAnalyzed)
	}
	return rep
}

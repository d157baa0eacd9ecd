package analytics

import (
	"fmt"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// PerformanceReport is the per-backend capability map across the fleet.
type PerformanceReport struct {
	TotalBackends   int                    `json:"total_backends"`
	BackendAnalysis map[string]interface{} `json:"backend_analysis"`
	Timestamp       string                 `json:"timestamp"`
}

// BackendPerformance projects each backend record into a capability entry
// keyed by name. Optional facets appear only when present; their absence is
// marked with properties_available / config_available false flags. Backends
// whose status query failed are keyed backend_error_N in encounter order
// and carry only the error text.
func BackendPerformance(backends []normalize.BackendRecord, now time.Time) PerformanceReport {
	analysis := map[string]interface{}{}

	for _, b := range backends {
		if b.Err != "" {
			key := fmt.Sprintf("backend_error_%d", len(analysis))
			analysis[key] = map[string]interface{}{"error": b.Err}
			continue
		}

		info := map[string]interface{}{
			"name":         b.Name,
			"operational":  b.Operational,
			"status_msg":   b.StatusMsg,
			"pending_jobs": b.PendingJobs,
		}
		if b.HasProperties {
			info["last_update"] = b.LastUpdate
			info["n_qubits"] = b.QubitCount
		} else {
			info["properties_available"] = false
		}
		if b.HasConfiguration {
			info["max_shots"] = b.MaxShots
			info["coupling_map"] = b.CouplingMapSize
		} else {
			info["config_available"] = false
		}
		analysis[b.Name] = info
	}

	return PerformanceReport{
		TotalBackends:   len(analysis),
		BackendAnalysis: analysis,
		Timestamp:       now.Format(time.RFC3339),
	}
}

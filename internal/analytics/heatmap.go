package analytics

import (
	"encoding/json"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// Load levels for the backend heatmap.
const (
	LoadGreen  = "green"
	LoadYellow = "yellow"
	LoadRed    = "red"
)

// yellowLoadMax is the highest pending-job count still rendered yellow.
const yellowLoadMax = 5

// HeatmapCell is one backend's load entry. Cells for backends whose status
// query failed marshal as {backend, error} only; healthy cells carry the
// full load detail.
type HeatmapCell struct {
	Backend     string
	Operational bool
	PendingJobs int
	LoadLevel   string
	Err         string
}

func (c HeatmapCell) MarshalJSON() ([]byte, error) {
	if c.Err != "" {
		return json.Marshal(map[string]string{
			"backend": c.Backend,
			"error":   c.Err,
		})
	}
	return json.Marshal(struct {
		Backend     string `json:"backend"`
		Operational bool   `json:"operational"`
		PendingJobs int    `json:"pending_jobs"`
		LoadLevel   string `json:"load_level"`
	}{c.Backend, c.Operational, c.PendingJobs, c.LoadLevel})
}

// HeatmapReport is the fleet-wide load snapshot.
type HeatmapReport struct {
	Timestamp string        `json:"timestamp"`
	Heatmap   []HeatmapCell `json:"heatmap"`
}

// BackendHeatmap maps each backend's queue depth to a traffic-light load
// level: empty queue green, up to five pending yellow, more red. A backend
// with a failed status query still gets a cell, never a silent drop.
func BackendHeatmap(backends []normalize.BackendRecord, now time.Time) HeatmapReport {
	cells := make([]HeatmapCell, 0, len(backends))
	for _, b := range backends {
		if b.Err != "" {
			cells = append(cells, HeatmapCell{Backend: b.Name, Err: b.Err})
			continue
		}
		cells = append(cells, HeatmapCell{
			Backend:     b.Name,
			Operational: b.Operational,
			PendingJobs: b.PendingJobs,
			LoadLevel:   loadLevel(b.PendingJobs),
		})
	}
	return HeatmapReport{
		Timestamp: now.Format(time.RFC3339),
		Heatmap:   cells,
	}
}

func loadLevel(pending int) string {
	switch {
	case pending == 0:
		return LoadGreen
	case pending <= yellowLoadMax:
		return LoadYellow
	default:
		return LoadRed
	}
}

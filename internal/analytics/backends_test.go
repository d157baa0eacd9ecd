package analytics

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func backend(name string, operational bool, pending int) normalize.BackendRecord {
	return normalize.BackendRecord{
		Name:        name,
		Operational: operational,
		StatusMsg:   "active",
		PendingJobs: pending,
	}
}

func withProperties(rec normalize.BackendRecord, qubits int) normalize.BackendRecord {
	rec.HasProperties = true
	rec.QubitCount = qubits
	rec.LastUpdate = "2025-02-28T00:00:00Z"
	return rec
}

func withConfiguration(rec normalize.BackendRecord, maxShots, couplingMap int) normalize.BackendRecord {
	rec.HasConfiguration = true
	rec.MaxShots = maxShots
	rec.CouplingMapSize = couplingMap
	return rec
}

// --- BackendPerformance ---

func TestBackendPerformance(t *testing.T) {
	backends := []normalize.BackendRecord{
		withConfiguration(withProperties(backend("ibm_a", true, 3), 127), 100000, 140),
		backend("ibm_b", false, 0), // no properties, no configuration
		{Name: "ibm_c", Err: "status timeout"},
	}

	rep := BackendPerformance(backends, fixedNow)

	if rep.TotalBackends != 3 {
		t.Errorf("TotalBackends = %d, want 3", rep.TotalBackends)
	}
	if rep.Timestamp != "2025-03-01T12:00:00Z" {
		t.Errorf("Timestamp = %q", rep.Timestamp)
	}

	a, ok := rep.BackendAnalysis["ibm_a"].(map[string]interface{})
	if !ok {
		t.Fatalf("ibm_a entry = %T", rep.BackendAnalysis["ibm_a"])
	}
	if a["n_qubits"] != 127 || a["max_shots"] != 100000 || a["coupling_map"] != 140 {
		t.Errorf("ibm_a = %v", a)
	}
	if _, present := a["properties_available"]; present {
		t.Error("ibm_a must not carry the properties_available flag")
	}

	b := rep.BackendAnalysis["ibm_b"].(map[string]interface{})
	if b["properties_available"] != false || b["config_available"] != false {
		t.Errorf("ibm_b availability flags = %v", b)
	}
	if _, present := b["n_qubits"]; present {
		t.Error("ibm_b must not carry property fields")
	}

	errEntry, ok := rep.BackendAnalysis["backend_error_2"].(map[string]interface{})
	if !ok {
		t.Fatalf("error entry missing: %v", rep.BackendAnalysis)
	}
	if errEntry["error"] != "status timeout" {
		t.Errorf("error entry = %v", errEntry)
	}
}

// --- BackendHeatmap ---

func TestBackendHeatmap_LoadBoundaries(t *testing.T) {
	tests := []struct {
		pending int
		want    string
	}{
		{0, LoadGreen},
		{1, LoadYellow},
		{5, LoadYellow},
		{6, LoadRed},
		{50, LoadRed},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("pending_%d", tc.pending), func(t *testing.T) {
			rep := BackendHeatmap([]normalize.BackendRecord{backend("b", true, tc.pending)}, fixedNow)
			if got := rep.Heatmap[0].LoadLevel; got != tc.want {
				t.Errorf("load level = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBackendHeatmap_FailedBackendKeptWithError(t *testing.T) {
	rep := BackendHeatmap([]normalize.BackendRecord{
		backend("ibm_a", true, 0),
		{Name: "ibm_b", Err: "status timeout"},
	}, fixedNow)

	if len(rep.Heatmap) != 2 {
		t.Fatalf("heatmap = %d cells, want 2", len(rep.Heatmap))
	}

	b, err := json.Marshal(rep.Heatmap[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var cell map[string]interface{}
	if err := json.Unmarshal(b, &cell); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(cell) != 2 || cell["backend"] != "ibm_b" || cell["error"] != "status timeout" {
		t.Errorf("error cell = %v, want only backend and error", cell)
	}
}

// --- SmartScheduler ---

func TestSmartScheduler_Scoring(t *testing.T) {
	tests := []struct {
		name      string
		rec       normalize.BackendRecord
		wantScore int
		wantLabel string
	}{
		{
			name:      "empty queue with properties",
			rec:       withProperties(backend("a", true, 0), 127),
			wantScore: 90,
			wantLabel: LabelRecommended,
		},
		{
			name:      "long queue without properties",
			rec:       backend("b", true, 12),
			wantScore: 55,
			wantLabel: LabelAvailable,
		},
		{
			name:      "short queue without properties",
			rec:       backend("c", true, 3),
			wantScore: 70,
			wantLabel: LabelRecommended,
		},
		{
			name:      "medium queue without properties",
			rec:       backend("d", true, 7),
			wantScore: 60,
			wantLabel: LabelRecommended,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := SmartScheduler([]normalize.BackendRecord{tc.rec}, fixedNow)
			if len(rep.RecommendedBackends) != 1 {
				t.Fatalf("scored = %d entries", len(rep.RecommendedBackends))
			}
			got := rep.RecommendedBackends[0]
			if got.RecommendationScore != tc.wantScore {
				t.Errorf("score = %d, want %d", got.RecommendationScore, tc.wantScore)
			}
			if got.Recommendation != tc.wantLabel {
				t.Errorf("label = %q, want %q", got.Recommendation, tc.wantLabel)
			}
		})
	}
}

func TestSmartScheduler_ExcludesNonOperationalAndFailed(t *testing.T) {
	rep := SmartScheduler([]normalize.BackendRecord{
		backend("down", false, 0),
		{Name: "broken", Err: "status timeout"},
		backend("up", true, 0),
	}, fixedNow)

	if rep.TotalBackendsAnalyzed != 1 {
		t.Errorf("TotalBackendsAnalyzed = %d, want 1", rep.TotalBackendsAnalyzed)
	}
	if len(rep.RecommendedBackends) != 1 || rep.RecommendedBackends[0].BackendName != "up" {
		t.Errorf("RecommendedBackends = %v", rep.RecommendedBackends)
	}
}

func TestSmartScheduler_TopFiveAndBestChoice(t *testing.T) {
	var backends []normalize.BackendRecord
	for i := 0; i < 7; i++ {
		backends = append(backends, backend(fmt.Sprintf("b%d", i), true, i*3))
	}

	rep := SmartScheduler(backends, fixedNow)

	if rep.TotalBackendsAnalyzed != 7 {
		t.Errorf("TotalBackendsAnalyzed = %d, want 7", rep.TotalBackendsAnalyzed)
	}
	if len(rep.RecommendedBackends) != recommendationLimit {
		t.Errorf("RecommendedBackends = %d entries, want %d", len(rep.RecommendedBackends), recommendationLimit)
	}
	if rep.BestChoice == nil || rep.BestChoice.BackendName != "b0" {
		t.Errorf("BestChoice = %v, want the empty-queue backend", rep.BestChoice)
	}
	for i := 1; i < len(rep.RecommendedBackends); i++ {
		if rep.RecommendedBackends[i].RecommendationScore > rep.RecommendedBackends[i-1].RecommendationScore {
			t.Errorf("scores not descending at %d: %v", i, rep.RecommendedBackends)
		}
	}
}

func TestSmartScheduler_Empty(t *testing.T) {
	rep := SmartScheduler(nil, fixedNow)
	if rep.BestChoice != nil {
		t.Errorf("BestChoice = %v, want nil", rep.BestChoice)
	}
	if rep.RecommendedBackends == nil {
		t.Error("RecommendedBackends must marshal as [], not null")
	}
}

func TestSmartScheduler_DefaultStatusMessage(t *testing.T) {
	rec := backend("a", true, 0)
	rec.StatusMsg = ""
	rep := SmartScheduler([]normalize.BackendRecord{rec}, fixedNow)

	if got := rep.RecommendedBackends[0].StatusMessage; got != "No message" {
		t.Errorf("StatusMessage = %q, want \"No message\"", got)
	}
}

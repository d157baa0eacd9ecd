package analytics

import (
	"sort"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// Score components for the scheduler recommendation.
const (
	scoreOperationalBase = 50
	scoreEmptyQueue      = 30
	scoreShortQueue      = 20 // fewer than 5 pending
	scoreMediumQueue     = 10 // fewer than 10 pending
	scoreLongQueue       = 5
	scorePropertiesBonus = 10
)

// Labels assigned from the recommendation score.
const (
	LabelRecommended    = "Recommended"
	LabelAvailable      = "Available"
	LabelNotRecommended = "Not recommended"
)

// Thresholds that map a score to a label.
const (
	thresholdRecommended = 60
	thresholdAvailable   = 50
)

// recommendationLimit caps the recommended-backends list.
const recommendationLimit = 5

// BackendScore is one operational backend's scored entry.
type BackendScore struct {
	BackendName         string `json:"backend_name"`
	Operational         bool   `json:"operational"`
	PendingJobs         int    `json:"pending_jobs"`
	RecommendationScore int    `json:"recommendation_score"`
	StatusMessage       string `json:"status_message"`
	Recommendation      string `json:"recommendation"`
}

// RecommendationCriteria documents the scoring inputs for API consumers.
type RecommendationCriteria struct {
	OperationalStatus string `json:"operational_status"`
	QueueLength       string `json:"queue_length"`
	Reliability       string `json:"reliability"`
}

// RecommendationReport is the smart-scheduler view.
type RecommendationReport struct {
	RecommendedBackends    []BackendScore         `json:"recommended_backends"`
	AnalysisTimestamp      string                 `json:"analysis_timestamp"`
	RecommendationCriteria RecommendationCriteria `json:"recommendation_criteria"`
	TotalBackendsAnalyzed  int                    `json:"total_backends_analyzed"`
	BestChoice             *BackendScore          `json:"best_choice,omitempty"`
}

// SmartScheduler scores every operational backend: a base for being
// operational, a queue bonus that shrinks with pending depth, and a bonus
// when properties are retrievable. Non-operational backends and backends
// with a failed status query are excluded entirely. The output is the top
// five by score descending, ties keeping input order, plus the single best.
func SmartScheduler(backends []normalize.BackendRecord, now time.Time) RecommendationReport {
	rep := RecommendationReport{
		RecommendedBackends: []BackendScore{},
		AnalysisTimestamp:   now.Format(time.RFC3339),
		RecommendationCriteria: RecommendationCriteria{
			OperationalStatus: "Must be operational",
			QueueLength:       "Lower is better",
			Reliability:       "Based on historical data",
		},
	}

	scored := []BackendScore{}
	for _, b := range backends {
		if b.Err != "" || !b.Operational {
			continue
		}

		score := scoreOperationalBase + queueBonus(b.PendingJobs)
		if b.HasProperties {
			score += scorePropertiesBonus
		}

		msg := b.StatusMsg
		if msg == "" {
			msg = "No message"
		}
		scored = append(scored, BackendScore{
			BackendName:         b.Name,
			Operational:         b.Operational,
			PendingJobs:         b.PendingJobs,
			RecommendationScore: score,
			StatusMessage:       msg,
			Recommendation:      recommendationLabel(score),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RecommendationScore > scored[j].RecommendationScore
	})

	rep.TotalBackendsAnalyzed = len(scored)
	if len(scored) > recommendationLimit {
		rep.RecommendedBackends = scored[:recommendationLimit]
	} else {
		rep.RecommendedBackends = scored
	}
	if len(scored) > 0 {
		best := scored[0]
		rep.BestChoice = &best
	}
	return rep
}

func queueBonus(pending int) int {
	switch {
	case pending == 0:
		return scoreEmptyQueue
	case pending < 5:
		return scoreShortQueue
	case pending < 10:
		return scoreMediumQueue
	default:
		return scoreLongQueue
	}
}

func recommendationLabel(score int) string {
	switch {
	case score >= thresholdRecommended:
		return LabelRecommended
	case score >= thresholdAvailable:
		return LabelAvailable
	default:
		return LabelNotRecommended
	}
}

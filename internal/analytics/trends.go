package analytics

import (
	"time"

	"github.com/quantumtrack/quantumtrack/internal/normalize"
)

// TrendReport buckets job activity by calendar date.
type TrendReport struct {
	PeriodDays           int                       `json:"period_days"`
	DailyJobCounts       map[string]int            `json:"daily_job_counts"`
	BackendUsageOverTime map[string]map[string]int `json:"backend_usage_over_time"`
	StatusTrends         map[string]map[string]int `json:"status_trends"`
	PeakUsageDay         interface{}               `json:"peak_usage_day"`
	MostUsedBackend      interface{}               `json:"most_used_backend"`
}

// TrendAnalysis buckets records by creation date, by (date, backend) and by
// (date, status). Records with an unparsable or "Unknown" creation date are
// skipped silently. PeakUsageDay and MostUsedBackend are (value, count)
// pairs, or the empty string when no record was dated; ties resolve to the
// lexicographically smallest candidate.
func TrendAnalysis(records []normalize.JobRecord, periodDays int) TrendReport {
	rep := TrendReport{
		PeriodDays:           periodDays,
		DailyJobCounts:       map[string]int{},
		BackendUsageOverTime: map[string]map[string]int{},
		StatusTrends:         map[string]map[string]int{},
		PeakUsageDay:         "",
		MostUsedBackend:      "",
	}
	backendTotals := map[string]int{}

	for _, rec := range records {
		ts, ok := parseCreationDate(rec.CreationDate)
		if !ok {
			continue
		}
		day := ts.Format("2006-01-02")

		rep.DailyJobCounts[day]++
		bucket(rep.BackendUsageOverTime, day, rec.Backend)
		bucket(rep.StatusTrends, day, rec.Status)
		backendTotals[rec.Backend]++
	}

	if day, n, ok := argmax(rep.DailyJobCounts); ok {
		rep.PeakUsageDay = CountedValue{Value: day, Count: n}
	}
	if name, n, ok := argmax(backendTotals); ok {
		rep.MostUsedBackend = CountedValue{Value: name, Count: n}
	}
	return rep
}

func bucket(m map[string]map[string]int, day, key string) {
	if m[day] == nil {
		m[day] = map[string]int{}
	}
	m[day][key]++
}

// parseCreationDate accepts the normalizer's RFC 3339 dates, including a
// bare "Z" timezone marker. "Unknown" and anything unparsable report false.
func parseCreationDate(s string) (time.Time, bool) {
	if s == "" || s == normalize.Unknown {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

package analytics

import "github.com/quantumtrack/quantumtrack/internal/normalize"

// UserSegment pairs one registered user with the outcome of fetching that
// user's records. A non-nil Err marks the whole segment as failed; the
// aggregator embeds the error instead of dropping the user.
type UserSegment struct {
	Name    string
	Records []normalize.JobRecord
	Err     error
}

// RecentJob is one entry of a user's recent-activity preview.
type RecentJob struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Date    string `json:"date"`
}

// UserStats summarizes one user's job activity.
type UserStats struct {
	TotalJobs          int            `json:"total_jobs"`
	StatusDistribution map[string]int `json:"status_distribution"`
	BackendUsage       map[string]int `json:"backend_usage"`
	RecentActivity     []RecentJob    `json:"recent_activity"`
	SuccessRate        float64        `json:"success_rate"`
}

// UserError replaces UserStats for a segment whose fetch failed.
type UserError struct {
	Error string `json:"error"`
}

// TopUser names the user with the highest job count.
type TopUser struct {
	Name     string `json:"name"`
	JobCount int    `json:"job_count"`
}

// CrossUserSummary aggregates across all user segments.
type CrossUserSummary struct {
	MostActiveUser     interface{} `json:"most_active_user"`
	TotalJobsAllUsers  int         `json:"total_jobs_all_users"`
	AverageJobsPerUser float64     `json:"average_jobs_per_user"`
}

// CrossUserReport is the all-users activity view.
type CrossUserReport struct {
	TotalUsers   int                    `json:"total_users"`
	UserActivity map[string]interface{} `json:"user_activity"`
	Summary      CrossUserSummary       `json:"summary"`
}

// recentActivityLimit caps the per-user recent-jobs preview.
const recentActivityLimit = 5

// CrossUserActivity reduces every user's segment into per-user stats plus a
// cross-user summary. Failed segments appear as an embedded error for that
// user only. The most-active user is the highest job count, first segment
// in input order winning ties; the mean divides by the total user count,
// failed segments included.
func CrossUserActivity(segments []UserSegment) CrossUserReport {
	rep := CrossUserReport{
		TotalUsers:   len(segments),
		UserActivity: map[string]interface{}{},
		Summary:      CrossUserSummary{MostActiveUser: ""},
	}

	totalJobs := 0
	var top *TopUser

	for _, seg := range segments {
		if seg.Err != nil {
			rep.UserActivity[seg.Name] = UserError{Error: seg.Err.Error()}
			continue
		}

		stats := UserStats{
			StatusDistribution: map[string]int{},
			BackendUsage:       map[string]int{},
			RecentActivity:     []RecentJob{},
		}
		for _, rec := range seg.Records {
			stats.TotalJobs++
			stats.StatusDistribution[rec.Status]++
			stats.BackendUsage[rec.Backend]++
			if len(stats.RecentActivity) < recentActivityLimit {
				stats.RecentActivity = append(stats.RecentActivity, RecentJob{
					JobID:   rec.JobID,
					Status:  rec.Status,
					Backend: rec.Backend,
					Date:    rec.CreationDate,
				})
			}
		}
		if stats.TotalJobs > 0 {
			stats.SuccessRate = float64(stats.StatusDistribution[StatusSuccess]) / float64(stats.TotalJobs) * 100
		}

		rep.UserActivity[seg.Name] = stats
		totalJobs += stats.TotalJobs
		if top == nil || stats.TotalJobs > top.JobCount {
			top = &TopUser{Name: seg.Name, JobCount: stats.TotalJobs}
		}
	}

	rep.Summary.TotalJobsAllUsers = totalJobs
	if len(segments) > 0 {
		rep.Summary.AverageJobsPerUser = float64(totalJobs) / float64(len(segments))
	}
	if top != nil {
		rep.Summary.MostActiveUser = *top
	}
	return rep
}

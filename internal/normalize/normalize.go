package normalize

import (
	"fmt"
	"time"

	"github.com/quantumtrack/quantumtrack/internal/quantum"
)

// Job builds a JobRecord from a remote handle.
//
// Failure policy has two tiers. A facet accessor returning an error (the
// facet is absent or unreadable) degrades that one facet to its default and
// leaves siblings untouched. A panic escaping the handle — the remote object
// is unusable as a whole — degrades the entire record to the sentinel.
// Partial data always beats no data.
func Job(h quantum.JobHandle) (rec JobRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = sentinelRecord(fmt.Sprint(r))
		}
	}()

	return JobRecord{
		JobID:        stringFacet(h.JobID, Unknown),
		Status:       stringFacet(h.Status, Unknown),
		Backend:      stringFacet(h.BackendName, Unknown),
		CreationDate: dateFacet(h.CreationDate),
		ProgramID:    stringFacet(h.ProgramID, Unknown),
		Tags:         tagsFacet(h.Tags),
		Usage:        usageFacet(h.Usage),
		Metrics:      metricsFacet(h.Metrics),
		QueueInfo:    queueFacet(h.QueueInfo),
		ErrorMessage: errorMessageFacet(h.ErrorMessage),
	}
}

// Identity extracts only the identity and status facets. The notifier's poll
// cycle calls this once per job per cycle, so it skips the heavier facets.
// A panicking handle yields the sentinel triple.
func Identity(h quantum.JobHandle) (jobID, status, backend string) {
	defer func() {
		if r := recover(); r != nil {
			jobID, status, backend = ErrorValue, ErrorValue, ErrorValue
		}
	}()

	jobID = stringFacet(h.JobID, Unknown)
	status = stringFacet(h.Status, Unknown)
	backend = stringFacet(h.BackendName, Unknown)
	return jobID, status, backend
}

// Backend builds a BackendRecord from a remote handle. A failed status query
// yields a record carrying only the name and the error — the backend is never
// silently dropped. A panic yields the sentinel record.
func Backend(h quantum.BackendHandle) (rec BackendRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = BackendRecord{Name: ErrorValue, Err: fmt.Sprint(r)}
		}
	}()

	name := stringFacet(h.Name, Unknown)

	st, err := h.Status()
	if err != nil {
		return BackendRecord{Name: name, Err: err.Error()}
	}

	rec = BackendRecord{
		Name:        name,
		Operational: st.Operational,
		StatusMsg:   st.StatusMsg,
		PendingJobs: st.PendingJobs,
	}

	if props, err := h.Properties(); err == nil && props != nil {
		rec.HasProperties = true
		rec.QubitCount = props.QubitCount
		if !props.LastUpdateDate.IsZero() {
			rec.LastUpdate = props.LastUpdateDate.Format(time.RFC3339)
		} else {
			rec.LastUpdate = Unknown
		}
	}

	if cfg, err := h.Configuration(); err == nil && cfg != nil {
		rec.HasConfiguration = true
		rec.MaxShots = cfg.MaxShots
		rec.CouplingMapSize = cfg.CouplingMapSize
	}

	return rec
}

// sentinelRecord is the whole-record failure fallback. All collection fields
// stay allocated so consumers keep their no-nil-checks guarantee.
func sentinelRecord(msg string) JobRecord {
	return JobRecord{
		JobID:        ErrorValue,
		Status:       ErrorValue,
		Backend:      ErrorValue,
		CreationDate: Unknown,
		ProgramID:    Unknown,
		Tags:         []string{},
		Usage:        map[string]float64{},
		Metrics:      map[string]interface{}{},
		QueueInfo:    map[string]interface{}{},
		Err:          msg,
	}
}

// --- facet extractors --------------------------------------------------------
//
// Each extractor is the typed equivalent of "try the facet, fall back to the
// default". They deliberately do not recover panics: an erroring facet is
// expected unavailability, a panicking handle is not, and the record-level
// guard in Job/Backend handles the latter.

// stringFacet returns the facet value, or def when the facet errors or is empty.
func stringFacet(f func() (string, error), def string) string {
	v, err := f()
	if err != nil || v == "" {
		return def
	}
	return v
}

// dateFacet returns the creation date as an ISO-8601 string, or Unknown.
func dateFacet(f func() (time.Time, error)) string {
	ts, err := f()
	if err != nil || ts.IsZero() {
		return Unknown
	}
	return ts.Format(time.RFC3339)
}

// tagsFacet returns the tag list, or an empty slice.
func tagsFacet(f func() ([]string, error)) []string {
	tags, err := f()
	if err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// usageFacet projects usage to {quantum_seconds, seconds}, or an empty map
// when the job reported no usage.
func usageFacet(f func() (*quantum.Usage, error)) map[string]float64 {
	u, err := f()
	if err != nil || u == nil {
		return map[string]float64{}
	}
	return map[string]float64{
		"quantum_seconds": u.QuantumSeconds,
		"seconds":         u.Seconds,
	}
}

// metricsFacet returns the execution metrics mapping, or an empty map.
func metricsFacet(f func() (map[string]interface{}, error)) map[string]interface{} {
	m, err := f()
	if err != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}

// queueFacet projects queue info to {position, estimated_start_time}, or an
// empty map when the job is not queued. The estimated start time is always a
// string — literally "None" when the service has no estimate; downstream
// dashboards match on that exact value.
func queueFacet(f func() (*quantum.QueueInfo, error)) map[string]interface{} {
	qi, err := f()
	if err != nil || qi == nil {
		return map[string]interface{}{}
	}

	est := "None"
	if qi.EstimatedStartTime != nil {
		est = qi.EstimatedStartTime.Format(time.RFC3339)
	}

	var pos interface{}
	if qi.Position != nil {
		pos = *qi.Position
	}
	return map[string]interface{}{
		"position":             pos,
		"estimated_start_time": est,
	}
}

// errorMessageFacet returns the job's error message, or nil. Unlike the other
// string facets the default is nil, not Unknown: "no error recorded" must stay
// distinguishable from "couldn't read the field".
func errorMessageFacet(f func() (string, error)) *string {
	msg, err := f()
	if err != nil || msg == "" {
		return nil
	}
	return &msg
}

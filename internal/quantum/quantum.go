package quantum

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by a facet accessor when the remote object does
// not carry that facet. Callers treat it as "use the default", never as a
// request failure.
var ErrUnavailable = errors.New("quantum: facet unavailable")

// Usage is a job's resource consumption.
type Usage struct {
	QuantumSeconds float64
	Seconds        float64
}

// QueueInfo is a queued job's position and start estimate.
// EstimatedStartTime is nil when the service has no estimate.
type QueueInfo struct {
	Position           *int
	EstimatedStartTime *time.Time
}

// BackendStatus is a backend's live operational state.
type BackendStatus struct {
	Operational bool
	StatusMsg   string
	PendingJobs int
}

// BackendProperties is calibration metadata, present only on some backends.
type BackendProperties struct {
	QubitCount     int
	LastUpdateDate time.Time
}

// BackendConfiguration is static device configuration.
type BackendConfiguration struct {
	MaxShots        int
	CouplingMapSize int
}

// JobHandle is one unit of remote work. Every accessor is an independent
// fault domain: it may fail with ErrUnavailable (facet absent) or any other
// error (facet unreadable) without affecting sibling facets.
type JobHandle interface {
	JobID() (string, error)
	Status() (string, error)
	BackendName() (string, error)
	CreationDate() (time.Time, error)
	ProgramID() (string, error)
	Tags() ([]string, error)

	// Usage returns (nil, nil) when the job reported no usage.
	Usage() (*Usage, error)

	// Metrics returns (nil, nil) when the job reported no execution metrics.
	Metrics() (map[string]interface{}, error)

	// QueueInfo returns (nil, nil) when the job is not queued.
	QueueInfo() (*QueueInfo, error)

	// ErrorMessage returns ("", nil) when the job recorded no error. This is
	// distinct from ErrUnavailable: an empty message is meaningful.
	ErrorMessage() (string, error)
}

// BackendHandle is one named remote execution resource.
type BackendHandle interface {
	Name() (string, error)
	Status() (*BackendStatus, error)
	Properties() (*BackendProperties, error)
	Configuration() (*BackendConfiguration, error)
}

// JobFilter bounds a job enumeration.
type JobFilter struct {
	// Limit caps the number of jobs returned. Zero means the service default.
	Limit int

	// CreatedAfter, when non-zero, restricts results to jobs created after it.
	CreatedAfter time.Time
}

// Service is the per-credential view of the remote job-execution service.
type Service interface {
	Jobs(ctx context.Context, f JobFilter) ([]JobHandle, error)
	Backends(ctx context.Context) ([]BackendHandle, error)
}

package normalize

// Unknown is the default for string facets that could not be read.
const Unknown = "Unknown"

// ErrorValue marks the identity fields of a sentinel record.
const ErrorValue = "Error"

// JobRecord is the canonical, fully-populated view of one remote job.
// Every field is always present: facets that could not be read hold their
// documented default, so consumers never need nil checks beyond ErrorMessage.
type JobRecord struct {
	JobID        string                 `json:"job_id"`
	Status       string                 `json:"status"`
	Backend      string                 `json:"backend"`
	CreationDate string                 `json:"creation_date"`
	ProgramID    string                 `json:"program_id"`
	Tags         []string               `json:"tags"`
	Usage        map[string]float64     `json:"usage"`
	Metrics      map[string]interface{} `json:"metrics"`
	QueueInfo    map[string]interface{} `json:"queue_info"`
	ErrorMessage *string                `json:"error_message"`

	// Err is set only on sentinel records, when the whole handle was unusable.
	Err string `json:"error,omitempty"`
}

// HasUsage reports whether the job carried usage data at all.
func (r JobRecord) HasUsage() bool {
	return len(r.Usage) > 0
}

// Failed reports whether the record's status is a terminal failure state.
func (r JobRecord) Failed() bool {
	switch r.Status {
	case "ERROR", "CANCELLED", "FAILED":
		return true
	}
	return false
}

// BackendRecord is the canonical view of one remote backend. Optional facets
// (properties, configuration) carry a presence flag rather than sentinels so
// scoring can distinguish "no properties" from "zero qubits".
type BackendRecord struct {
	Name        string
	Operational bool
	StatusMsg   string
	PendingJobs int

	HasProperties bool
	QubitCount    int
	LastUpdate    string

	HasConfiguration bool
	MaxShots         int
	CouplingMapSize  int

	// Err is non-empty when the backend's status query failed. Such records
	// carry only Name and Err; consumers must emit them rather than drop them.
	Err string
}

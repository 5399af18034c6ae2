package task

// Status is the lifecycle state of an analysis task as reported by the API.
type Status string

const (
	Pending              Status = "pending"
	Running              Status = "running"
	Cancelling           Status = "cancelling"
	Completed            Status = "completed"
	Failed               Status = "failed"
	Cancelled            Status = "cancelled"
	DataAlreadyRetrieved Status = "data_already_retrieved"
)

const DefaultCommandTemplate = "{analyzer_cmd} {path}"

// IsTerminal reports whether no further transition can happen from s.
func (s Status) IsTerminal() bool {
	switch s {
	case Completed, Failed, Cancelled, DataAlreadyRetrieved:
		return true
	default:
		return false
	}
}

// IsActive reports whether the task is still queued or executing.
func (s Status) IsActive() bool {
	return s == Pending || s == Running
}

func (s Status) String() string {
	if s == "" {
		return "idle"
	}

	return string(s)
}

type TaskCreate struct {
	AnalyzerName    string `json:"analyzer_name"`
	RepositoryURL   string `json:"repository_url"`
	CommandTemplate string `json:"command_template,omitempty"`
}

type Task struct {
	ID              string     `json:"task_id"`
	AnalyzerName    string     `json:"analyzer_name"`
	RepositoryURL   string     `json:"repository_url"`
	CommandTemplate string     `json:"command_template"`
	Status          Status     `json:"status"`
	CreatedAt       Timestamp  `json:"created_at"`
	CompletedAt     *Timestamp `json:"completed_at,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

type StatusResponse struct {
	TaskID string `json:"task_id"`
	Status Status `json:"status"`
}

type CancelResponse struct {
	TaskID  string `json:"task_id"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type Package struct {
	Name       string `json:"name"`
	LastSerial *int64 `json:"last_serial,omitempty"`
}

type SearchResponse struct {
	Packages []Package `json:"packages"`
}

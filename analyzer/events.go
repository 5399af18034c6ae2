package analyzer

import "github.com/absmach/pkgbench/task"

type EventKind uint8

const (
	StatusChanged EventKind = iota
	PollStarted
	PollStopped
	ErrorRecorded
	PackagesUpdated
)

func (k EventKind) String() string {
	switch k {
	case StatusChanged:
		return "StatusChanged"
	case PollStarted:
		return "PollStarted"
	case PollStopped:
		return "PollStopped"
	case ErrorRecorded:
		return "ErrorRecorded"
	case PackagesUpdated:
		return "PackagesUpdated"
	default:
		return "Unknown"
	}
}

// Event notifies observers about a session state transition.
type Event struct {
	Kind    EventKind
	TaskID  string
	Status  task.Status
	Message string
}

// Observer receives session events. Observers may be invoked from the poll
// goroutine and must not block.
type Observer func(Event)

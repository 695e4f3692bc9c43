package domain

import "time"

// Action is the recorded outcome of one installer mutation.
type Action string

const (
	ActionCreated            Action = "created"
	ActionModified           Action = "modified"
	ActionDeleted            Action = "deleted"
	ActionSkippedNoOverwrite Action = "skipped_no_overwrite"
)

// LogEntry is one append-only audit record of the transaction log.
type LogEntry struct {
	ElementName string    `json:"element_name"`
	ElementType string    `json:"element_type"`
	Action      Action    `json:"action"`
	Time        time.Time `json:"time"`
}

// NewLogEntry builds an entry for dep stamped with the current time.
func NewLogEntry(dep Dependency, action Action) LogEntry {
	return LogEntry{
		ElementName: dep.Name(),
		ElementType: dep.Type,
		Action:      action,
		Time:        time.Now().UTC(),
	}
}

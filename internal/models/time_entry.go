package models

import "time"

type TimeEntryType string

const (
	TimeEntryStart TimeEntryType = "start"
	TimeEntryEnd   TimeEntryType = "end"
)

func (t TimeEntryType) IsValid() bool {
	return t == TimeEntryStart || t == TimeEntryEnd
}

type TimeEntry struct {
	ID        string
	UserID    string
	ProjectID string
	TaskID    string
	Type      TimeEntryType
	Timestamp time.Time
}

package models

import "time"

type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID         string
	ProjectID  string
	AssignedTo string
	Text       string
	Status     TaskStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package models

import "time"

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusCompleted:
		return true
	default:
		return false
	}
}

const DefaultProjectColor = "#3B82F6"

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Status      ProjectStatus
	// Progress is a percentage in [0, 100].
	Progress       int
	TotalTime      time.Duration
	TodayTime      time.Duration
	Deadline       *time.Time
	Color          string
	IsTimerRunning bool
	// InvitedUserIDs is derived from the membership relation on reads
	// and is never written through UpdateProject.
	InvitedUserIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasAccess reports whether the user owns the project or is a member of it.
func (p *Project) HasAccess(userID string) bool {
	if p.UserID == userID {
		return true
	}
	for _, id := range p.InvitedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

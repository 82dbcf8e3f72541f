// Package repository declares the storage contracts the services depend on.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oponion/oponion-api/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateToken    = errors.New("duplicate invitation token")
	// ErrInvalidReference is returned when a foreign key points nowhere.
	ErrInvalidReference = errors.New("invalid reference")
)

type UserRepository interface {
	// CreateUser inserts the user and its profile atomically.
	CreateUser(ctx context.Context, user *models.User, info *models.UserInfo) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// GetUserByLogin matches the login against the email first
	// and falls back to the username.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// SearchUsers returns users whose username or email contains query
	// (case-insensitive) together with the user identified by userID.
	// Either argument may be empty.
	SearchUsers(ctx context.Context, query, userID string) ([]*models.User, error)
	ListUsersExcept(ctx context.Context, userID string) ([]*models.User, error)
	GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error)
	UpdateUserInfo(ctx context.Context, info *models.UserInfo) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	// ReplaceUserSessions deletes every session of session.UserID
	// and inserts the given one in the same transaction.
	ReplaceUserSessions(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, projectID string) (*models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
	// ListProjectsForUser returns the projects owned by the user
	// or shared with them, without duplicates.
	ListProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error)
	// UpdateProject writes the editable fields only. Timer columns
	// are owned by RecordTimeEntry.
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, projectID string) error
	ListProjectMembers(ctx context.Context, projectID string) ([]*models.User, error)
}

type TaskFilter struct {
	ProjectID  string
	AssignedTo string
	Offset     uint32
	Limit      uint32
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, taskID string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, taskID string) error
}

type InvitationFilter struct {
	ProjectID string
	Status    models.InvitationStatus
	// FromUserID restricts the result to invitations sent by that user.
	FromUserID string
	// ParticipantID restricts the result to invitations sent
	// or received by that user.
	ParticipantID string
}

type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	GetInvitationByID(ctx context.Context, invitationID string) (*models.Invitation, error)
	ListInvitations(ctx context.Context, filter InvitationFilter) ([]*models.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, invitationID string, status models.InvitationStatus, updatedAt time.Time) (*models.Invitation, error)
	// AcceptPendingInvitation consumes a pending invitation by token and adds
	// the invitee to the project members in one transaction. Only one caller
	// can consume a given token; all others get ErrNotFound.
	AcceptPendingInvitation(ctx context.Context, token string, acceptedAt time.Time) (*models.Invitation, error)
	// GetLatestInvitation returns the most recent invitation
	// addressed to the user for the project.
	GetLatestInvitation(ctx context.Context, projectID, toUserID string) (*models.Invitation, error)
}

type TimeEntryFilter struct {
	ProjectID string
	TaskID    string
	UserID    string
	Since     time.Time
}

// TimerUpdate is applied to a project together with a new time entry.
type TimerUpdate struct {
	// Elapsed is added to the stored total, never replacing it.
	Elapsed time.Duration
	// TodayTime replaces the stored today time when set.
	TodayTime *time.Duration
	UpdatedAt time.Time
}

type TimeEntryRepository interface {
	CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	// RecordTimeEntry inserts the entry and applies update to its project
	// in one transaction. The running flag is recomputed from the open
	// starts of every user on the project.
	RecordTimeEntry(ctx context.Context, entry *models.TimeEntry, update TimerUpdate) error
	GetTimeEntryByID(ctx context.Context, entryID string) (*models.TimeEntry, error)
	// ListTimeEntries returns entries ordered by timestamp ascending.
	ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]*models.TimeEntry, error)
	// GetLastTimeEntry returns the most recent entry of the user on the project.
	GetLastTimeEntry(ctx context.Context, projectID, userID string) (*models.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	DeleteTimeEntry(ctx context.Context, entryID string) error
}

// Store bundles every repository; both backends implement it.
type Store interface {
	UserRepository
	SessionRepository
	ProjectRepository
	TaskRepository
	InvitationRepository
	TimeEntryRepository
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oponion/oponion-api/internal/models"
)

var (
	ErrMissingCredentials   = errors.New("username, email and password are required")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrUserInfoNotFound     = errors.New("user information not found")
	ErrMissingSearchParams  = errors.New("query or user id is required")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")

	ErrForbidden = errors.New("access denied")

	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidProject  = errors.New("invalid project")

	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTask       = errors.New("invalid task")
	ErrInvalidTaskStatus = errors.New("invalid task status")

	ErrInvitationNotFound      = errors.New("invitation not found")
	ErrInvalidInvitationToken  = errors.New("invalid or expired invitation token")
	ErrInvalidInvitationStatus = errors.New("invalid invitation status")
	ErrNotificationFailed      = errors.New("failed to notify invitee")

	ErrTimeEntryNotFound    = errors.New("time entry not found")
	ErrInvalidTimeEntryType = errors.New("invalid time entry type")
	ErrTimerAlreadyRunning  = errors.New("timer already running")
	ErrTimerNotRunning      = errors.New("timer not running")
)

type AuthService interface {
	// Login authenticates the user by email or username and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if no user matches the login
	// or ErrUserPasswordMismatch if the given password doesn't
	// match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user together with their profile.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUsernameTaken or ErrEmailTaken if a user
	// with the given username or email already exists.
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type UserService interface {
	// SearchUsers matches the query against usernames and emails and
	// adds the user with the given ID. At least one must be set.
	SearchUsers(ctx context.Context, query, userID string) ([]*models.User, error)
	// ListSelectableUsers returns everyone except the requester.
	ListSelectableUsers(ctx context.Context, requesterID string) ([]*models.User, error)
	GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error)
	UpdateUserInfo(ctx context.Context, params UpdateUserInfoParams) (*models.UserInfo, error)
}

type ProjectService interface {
	CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
	// ListProjects returns the projects the user owns or is a member of.
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	// UpdateProject and DeleteProject only see projects owned by
	// params.UserID; others are reported as ErrProjectNotFound.
	UpdateProject(ctx context.Context, params UpdateProjectParams) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
}

type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	GetTask(ctx context.Context, taskID, userID string) (*models.Task, error)
	// ListTasks returns the tasks of params.ProjectID or, if it is
	// empty, the tasks assigned to params.UserID.
	ListTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID, userID string) error
}

type InvitationService interface {
	// SendInvitation stores a pending invitation with a fresh token
	// and notifies the invitee.
	//
	// It returns ErrUserNotFound or ErrProjectNotFound if the invitee
	// or the project doesn't exist. A failed notification is reported
	// as ErrNotificationFailed together with the stored invitation.
	SendInvitation(ctx context.Context, params SendInvitationParams) (*models.Invitation, error)

	// ConfirmInvitation accepts the pending invitation with the given
	// token and adds the invitee to the project members.
	//
	// Unknown and already resolved tokens both yield
	// ErrInvalidInvitationToken.
	ConfirmInvitation(ctx context.Context, token string) (*models.Invitation, error)

	// SetInvitationStatus changes the status without touching the
	// project members. Only the inviter or the invitee may do this.
	SetInvitationStatus(ctx context.Context, params SetInvitationStatusParams) (*models.Invitation, error)

	// ListInvitations returns the invitations of a project. The owner
	// sees all of them, anyone else only the ones they sent or received.
	ListInvitations(ctx context.Context, params ListInvitationsParams) ([]*models.Invitation, error)

	// ListInvitedUsers returns the project members with the status
	// of their latest invitation.
	ListInvitedUsers(ctx context.Context, projectID string) ([]*models.InvitedUser, error)
}

type TimeEntryService interface {
	// CreateTimeEntry starts or stops the requester's timer on a project.
	//
	// It returns ErrTimerAlreadyRunning for a start after a start and
	// ErrTimerNotRunning for an end without an open start.
	CreateTimeEntry(ctx context.Context, params CreateTimeEntryParams) (*models.TimeEntry, error)
	ListTimeEntries(ctx context.Context, params ListTimeEntriesParams) ([]*models.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, params UpdateTimeEntryParams) (*models.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, entryID, userID string) error
}

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	Fingerprint string
	FirstName   string
	LastName    string
	Phone       string
	Job         string
	Location    string
	Timezone    string
	Languages   string
	Bio         string
}

type LoginParams struct {
	// Login is either an email or a username.
	Login       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

// UpdateUserInfoParams changes the profile of UserID. With Partial set
// nil fields are left alone, otherwise they are cleared.
type UpdateUserInfoParams struct {
	UserID    string
	Partial   bool
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Job       *string
	Location  *string
	Timezone  *string
	Languages *string
	Bio       *string
}

type CreateProjectParams struct {
	UserID      string
	Name        string
	Description string
	Status      models.ProjectStatus
	Progress    int
	Deadline    *time.Time
	Color       string
}

type UpdateProjectParams struct {
	ID          string
	UserID      string
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Progress    *int
	Deadline    *time.Time
	Color       *string
}

type CreateTaskParams struct {
	UserID     string
	ProjectID  string
	AssignedTo string
	Text       string
	Status     models.TaskStatus
}

type ListTasksParams struct {
	UserID    string
	ProjectID string
	Offset    uint32
	Limit     uint32
}

type UpdateTaskParams struct {
	ID     string
	UserID string
	Status models.TaskStatus
	Text   *string
}

type SendInvitationParams struct {
	FromUserID string
	ToUserID   string
	ProjectID  string
}

type SetInvitationStatusParams struct {
	ID     string
	UserID string
	Status models.InvitationStatus
}

type ListInvitationsParams struct {
	ProjectID       string
	RequesterID     string
	AcceptedOnly    bool
	SentByRequester bool
}

type CreateTimeEntryParams struct {
	UserID    string
	ProjectID string
	TaskID    string
	Type      models.TimeEntryType
}

type ListTimeEntriesParams struct {
	RequesterID string
	Since       time.Time
	ProjectID   string
	TaskID      string
	// UserID defaults to RequesterID.
	UserID string
}

type UpdateTimeEntryParams struct {
	ID        string
	UserID    string
	Type      *models.TimeEntryType
	Timestamp *time.Time
}

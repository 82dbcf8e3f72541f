package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oponion/oponion-api/internal/models"
)

// flexibleID accepts identifiers sent either as JSON strings or numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}

	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = flexibleID(n.String())
	return nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponses(users []*models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		})
	}
	return out
}

type userInfoResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Job       string    `json:"job"`
	Location  string    `json:"location"`
	Timezone  string    `json:"timezone"`
	Languages string    `json:"languages"`
	Bio       string    `json:"bio"`
	JoinedAt  time.Time `json:"joined_at"`
}

func newUserInfoResponse(info *models.UserInfo) userInfoResponse {
	return userInfoResponse{
		UserID:    info.UserID,
		Email:     info.Email,
		FirstName: info.FirstName,
		LastName:  info.LastName,
		Phone:     info.Phone,
		Job:       info.Job,
		Location:  info.Location,
		Timezone:  info.Timezone,
		Languages: info.Languages,
		Bio:       info.Bio,
		JoinedAt:  info.JoinedAt,
	}
}

type projectResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	TotalTime      int64     `json:"total_time"`
	TodayTime      int64     `json:"today_time"`
	Deadline       *string   `json:"deadline"`
	Color          string    `json:"color"`
	IsTimerRunning bool      `json:"is_timer_running"`
	InvitedUsers   []string  `json:"invited_users"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newProjectResponse(p *models.Project) projectResponse {
	resp := projectResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         string(p.Status),
		Progress:       p.Progress,
		TotalTime:      int64(p.TotalTime / time.Second),
		TodayTime:      int64(p.TodayTime / time.Second),
		Color:          p.Color,
		IsTimerRunning: p.IsTimerRunning,
		InvitedUsers:   p.InvitedUserIDs,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.InvitedUsers == nil {
		resp.InvitedUsers = []string{}
	}
	if p.Deadline != nil {
		deadline := p.Deadline.Format(time.DateOnly)
		resp.Deadline = &deadline
	}
	return resp
}

func newProjectResponses(projects []*models.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, newProjectResponse(p))
	}
	return out
}

type invitedUserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	InvitationStatus string `json:"invitation_status"`
}

type taskResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	AssignedTo string    `json:"assigned_to"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:         task.ID,
		ProjectID:  task.ProjectID,
		AssignedTo: task.AssignedTo,
		Text:       task.Text,
		Status:     string(task.Status),
		CreatedAt:  task.CreatedAt,
		UpdatedAt:  task.UpdatedAt,
	}
}

type invitationResponse struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	ProjectID  string    `json:"project_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newInvitationResponse(inv *models.Invitation) invitationResponse {
	return invitationResponse{
		ID:         inv.ID,
		FromUserID: inv.FromUserID,
		ToUserID:   inv.ToUserID,
		ProjectID:  inv.ProjectID,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

type timeEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	TaskID    *string   `json:"task_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func newTimeEntryResponse(e *models.TimeEntry) timeEntryResponse {
	resp := timeEntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		ProjectID: e.ProjectID,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
	}
	if e.TaskID != "" {
		taskID := e.TaskID
		resp.TaskID = &taskID
	}
	return resp
}

type messageResponse struct {
	Message string `json:"message"`
}

package models

import "time"

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"

	// InvitationStatusUnknown is reported for a project member
	// that has no matching invitation in the ledger.
	InvitationStatusUnknown InvitationStatus = "unbekannt"
)

func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined:
		return true
	default:
		return false
	}
}

type Invitation struct {
	ID         string
	FromUserID string
	ToUserID   string
	ProjectID  string
	Token      string
	Status     InvitationStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvitedUser is a project member joined with the status of
// the most recent invitation addressed to them.
type InvitedUser struct {
	ID               string
	Email            string
	Name             string
	InvitationStatus InvitationStatus
}

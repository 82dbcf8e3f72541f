// Package notify delivers invitation messages to invitees.
package notify

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/oponion/oponion-api/internal/i18n"
)

// Invitation carries what an invitee needs to accept an invitation.
type Invitation struct {
	Token          string
	RecipientEmail string
	RecipientName  string
	InviterName    string
	ProjectName    string
}

type Notifier interface {
	NotifyInvitation(ctx context.Context, invitation Invitation) error
}

// ConfirmationLink returns the frontend URL an invitee opens to accept.
func ConfirmationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/invitations/confirm/" + token
}

type message struct {
	Subject string
	Body    string
	Link    string
}

type composer struct {
	catalog *i18n.Catalog
	tag     language.Tag
	baseURL string
}

func (c composer) compose(invitation Invitation) message {
	link := ConfirmationLink(c.baseURL, invitation.Token)
	return message{
		Subject: c.catalog.Sprintf(c.tag, "invitation.email.subject"),
		Body: c.catalog.Sprintf(
			c.tag,
			"invitation.email.body",
			invitation.RecipientName,
			invitation.InviterName,
			invitation.ProjectName,
			link,
		),
		Link: link,
	}
}

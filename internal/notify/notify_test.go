package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/oponion/oponion-api/internal/i18n"
)

func TestConfirmationLink(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://localhost:5173", want: "http://localhost:5173/invitations/confirm/abc"},
		{base: "https://app.example.com/", want: "https://app.example.com/invitations/confirm/abc"},
	}
	for _, tt := range tests {
		if got := ConfirmationLink(tt.base, "abc"); got != tt.want {
			t.Fatalf("ConfirmationLink(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestComposeGerman(t *testing.T) {
	catalog, err := i18n.Load("de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	c := composer{catalog: catalog, tag: language.German, baseURL: "http://front"}
	msg := c.compose(Invitation{
		Token:         "tok",
		RecipientName: "bob",
		InviterName:   "alice",
		ProjectName:   "Apollo",
	})

	if msg.Subject != "Du wurdest zu einem Projekt eingeladen" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.Link != "http://front/invitations/confirm/tok" {
		t.Fatalf("unexpected link %q", msg.Link)
	}
	for _, part := range []string{"bob", "alice", "Apollo", msg.Link} {
		if !strings.Contains(msg.Body, part) {
			t.Fatalf("body %q does not contain %q", msg.Body, part)
		}
	}
}

func TestLogNotifierLogsLink(t *testing.T) {
	catalog, err := i18n.Load("de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf), catalog, language.English, "http://front")

	err = n.NotifyInvitation(context.Background(), Invitation{Token: "tok", RecipientEmail: "bob@example.com"})
	if err != nil {
		t.Fatalf("NotifyInvitation() error = %v", err)
	}
	if !strings.Contains(buf.String(), "http://front/invitations/confirm/tok") {
		t.Fatalf("log output %q does not contain the link", buf.String())
	}
	if !strings.Contains(buf.String(), "You have been invited to a project") {
		t.Fatalf("log output %q does not contain the subject", buf.String())
	}
}

func TestNewSMTPNotifierRequiresHost(t *testing.T) {
	catalog, err := i18n.Load("de")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = NewSMTPNotifier(zerolog.Nop(), SMTPConfig{Port: 587}, catalog, language.German, "http://front")
	if err == nil {
		t.Fatal("expected error for empty host")
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository/memory"
)

type invitationFixture struct {
	store    *memory.Store
	notifier *fakeNotifier
	svc      InvitationService
	alice    *models.User
	bob      *models.User
	carol    *models.User
	project  *models.Project
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	store := memory.New()
	notifier := &fakeNotifier{}
	f := &invitationFixture{
		store:    store,
		notifier: notifier,
		svc:      newInvitationService(store, notifier),
		alice:    createUser(t, store, "alice"),
		bob:      createUser(t, store, "bob"),
		carol:    createUser(t, store, "carol"),
	}
	f.project = createProject(t, store, f.alice.ID, "Apollo")
	return f
}

func (f *invitationFixture) send(t *testing.T, from, to *models.User) *models.Invitation {
	t.Helper()

	invitation, err := f.svc.SendInvitation(context.Background(), SendInvitationParams{
		FromUserID: from.ID,
		ToUserID:   to.ID,
		ProjectID:  f.project.ID,
	})
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}
	return invitation
}

func TestSendInvitationCreatesPendingInvitation(t *testing.T) {
	f := newInvitationFixture(t)

	first := f.send(t, f.alice, f.bob)
	second := f.send(t, f.alice, f.bob)

	if first.Status != models.InvitationStatusPending || second.Status != models.InvitationStatusPending {
		t.Fatalf("statuses = %s, %s; want pending", first.Status, second.Status)
	}
	if first.Token == "" || first.Token == second.Token {
		t.Fatalf("tokens must be unique, got %q and %q", first.Token, second.Token)
	}
	if first.ID == second.ID {
		t.Fatalf("expected two distinct invitations, got id %s twice", first.ID)
	}
	if f.notifier.count() != 2 {
		t.Fatalf("notifications = %d, want 2", f.notifier.count())
	}

	sent := f.notifier.sent[0]
	if sent.RecipientEmail != f.bob.Email || sent.Token != first.Token || sent.ProjectName != "Apollo" {
		t.Fatalf("unexpected notification %+v", sent)
	}
	if ids := memberIDs(t, f.store, f.project.ID); len(ids) != 0 {
		t.Fatalf("sending must not add members, got %v", ids)
	}
}

func TestSendInvitationUnknownReferences(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendInvitation(ctx, SendInvitationParams{
		FromUserID: f.alice.ID,
		ToUserID:   "missing",
		ProjectID:  f.project.ID,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown invitee: error = %v, want ErrUserNotFound", err)
	}

	_, err = f.svc.SendInvitation(ctx, SendInvitationParams{
		FromUserID: f.alice.ID,
		ToUserID:   f.bob.ID,
		ProjectID:  "999",
	})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project: error = %v, want ErrProjectNotFound", err)
	}

	if f.notifier.count() != 0 {
		t.Fatalf("notifications = %d, want 0", f.notifier.count())
	}
}

func TestSendInvitationNotificationFailure(t *testing.T) {
	f := newInvitationFixture(t)
	f.notifier.err = errors.New("smtp down")

	invitation, err := f.svc.SendInvitation(context.Background(), SendInvitationParams{
		FromUserID: f.alice.ID,
		ToUserID:   f.bob.ID,
		ProjectID:  f.project.ID,
	})
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("error = %v, want ErrNotificationFailed", err)
	}
	if invitation == nil {
		t.Fatal("expected the stored invitation alongside the error")
	}

	stored, err := f.store.GetInvitationByID(context.Background(), invitation.ID)
	if err != nil {
		t.Fatalf("GetInvitationByID() error = %v", err)
	}
	if stored.Status != models.InvitationStatusPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestConfirmInvitation(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	invitation := f.send(t, f.alice, f.bob)

	confirmed, err := f.svc.ConfirmInvitation(ctx, invitation.Token)
	if err != nil {
		t.Fatalf("ConfirmInvitation() error = %v", err)
	}
	if confirmed.Status != models.InvitationStatusAccepted {
		t.Fatalf("status = %s, want accepted", confirmed.Status)
	}

	ids := memberIDs(t, f.store, f.project.ID)
	if len(ids) != 1 || ids[0] != f.bob.ID {
		t.Fatalf("members = %v, want [%s]", ids, f.bob.ID)
	}

	_, err = f.svc.ConfirmInvitation(ctx, invitation.Token)
	if !errors.Is(err, ErrInvalidInvitationToken) {
		t.Fatalf("second confirm: error = %v, want ErrInvalidInvitationToken", err)
	}
	if ids := memberIDs(t, f.store, f.project.ID); len(ids) != 1 {
		t.Fatalf("members after second confirm = %v", ids)
	}
}

func TestConfirmInvitationUnknownToken(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	_, unknownErr := f.svc.ConfirmInvitation(ctx, "does-not-exist")
	if !errors.Is(unknownErr, ErrInvalidInvitationToken) {
		t.Fatalf("unknown token: error = %v", unknownErr)
	}

	invitation := f.send(t, f.alice, f.bob)
	if _, err := f.svc.ConfirmInvitation(ctx, invitation.Token); err != nil {
		t.Fatalf("ConfirmInvitation() error = %v", err)
	}
	_, usedErr := f.svc.ConfirmInvitation(ctx, invitation.Token)
	if usedErr != unknownErr {
		t.Fatalf("used token error %v differs from unknown token error %v", usedErr, unknownErr)
	}

	_, err := f.svc.ConfirmInvitation(ctx, "")
	if !errors.Is(err, ErrInvalidInvitationToken) {
		t.Fatalf("empty token: error = %v", err)
	}
}

func TestConfirmInvitationConcurrently(t *testing.T) {
	f := newInvitationFixture(t)
	invitation := f.send(t, f.alice, f.bob)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConfirmInvitation(context.Background(), invitation.Token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidInvitationToken):
				failures++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || failures != workers-1 {
		t.Fatalf("successes = %d, failures = %d", successes, failures)
	}
	if ids := memberIDs(t, f.store, f.project.ID); len(ids) != 1 {
		t.Fatalf("members = %v, want exactly one", ids)
	}
}

func TestSetInvitationStatus(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	invitation := f.send(t, f.alice, f.bob)

	declined, err := f.svc.SetInvitationStatus(ctx, SetInvitationStatusParams{
		ID:     invitation.ID,
		UserID: f.bob.ID,
		Status: models.InvitationStatusDeclined,
	})
	if err != nil {
		t.Fatalf("SetInvitationStatus() error = %v", err)
	}
	if declined.Status != models.InvitationStatusDeclined {
		t.Fatalf("status = %s, want declined", declined.Status)
	}
	if ids := memberIDs(t, f.store, f.project.ID); len(ids) != 0 {
		t.Fatalf("declining changed members: %v", ids)
	}

	_, err = f.svc.ConfirmInvitation(ctx, invitation.Token)
	if !errors.Is(err, ErrInvalidInvitationToken) {
		t.Fatalf("confirming a declined invitation: error = %v", err)
	}
}

func TestSetInvitationStatusAcceptedKeepsMembers(t *testing.T) {
	f := newInvitationFixture(t)

	invitation := f.send(t, f.alice, f.bob)
	_, err := f.svc.SetInvitationStatus(context.Background(), SetInvitationStatusParams{
		ID:     invitation.ID,
		UserID: f.alice.ID,
		Status: models.InvitationStatusAccepted,
	})
	if err != nil {
		t.Fatalf("SetInvitationStatus() error = %v", err)
	}
	if ids := memberIDs(t, f.store, f.project.ID); len(ids) != 0 {
		t.Fatalf("members = %v, want none", ids)
	}
}

func TestSetInvitationStatusErrors(t *testing.T) {
	f := newInvitationFixture(t)
	invitation := f.send(t, f.alice, f.bob)

	tests := []struct {
		name   string
		params SetInvitationStatusParams
		want   error
	}{
		{
			name:   "invalid status",
			params: SetInvitationStatusParams{ID: invitation.ID, UserID: f.bob.ID, Status: "maybe"},
			want:   ErrInvalidInvitationStatus,
		},
		{
			name:   "unknown invitation",
			params: SetInvitationStatusParams{ID: "999", UserID: f.bob.ID, Status: models.InvitationStatusDeclined},
			want:   ErrInvitationNotFound,
		},
		{
			name:   "stranger",
			params: SetInvitationStatusParams{ID: invitation.ID, UserID: f.carol.ID, Status: models.InvitationStatusDeclined},
			want:   ErrForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SetInvitationStatus(context.Background(), tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListInvitationsVisibility(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()
	dave := createUser(t, f.store, "dave")

	toBob := f.send(t, f.alice, f.bob)
	f.send(t, f.alice, f.carol)
	f.send(t, f.bob, dave)

	if _, err := f.svc.ConfirmInvitation(ctx, toBob.Token); err != nil {
		t.Fatalf("ConfirmInvitation() error = %v", err)
	}

	tests := []struct {
		name   string
		params ListInvitationsParams
		want   int
	}{
		{name: "owner sees all", params: ListInvitationsParams{RequesterID: f.alice.ID}, want: 3},
		{name: "owner sent", params: ListInvitationsParams{RequesterID: f.alice.ID, SentByRequester: true}, want: 2},
		{name: "owner accepted", params: ListInvitationsParams{RequesterID: f.alice.ID, AcceptedOnly: true}, want: 1},
		{name: "member sees own", params: ListInvitationsParams{RequesterID: f.bob.ID}, want: 2},
		{name: "member sent", params: ListInvitationsParams{RequesterID: f.bob.ID, SentByRequester: true}, want: 1},
		{name: "invitee sees own", params: ListInvitationsParams{RequesterID: f.carol.ID}, want: 1},
		{name: "invitee accepted", params: ListInvitationsParams{RequesterID: f.carol.ID, AcceptedOnly: true}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.ProjectID = f.project.ID
			got, err := f.svc.ListInvitations(ctx, tt.params)
			if err != nil {
				t.Fatalf("ListInvitations() error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d invitations, want %d", len(got), tt.want)
			}
		})
	}

	_, err := f.svc.ListInvitations(ctx, ListInvitationsParams{ProjectID: "999", RequesterID: f.alice.ID})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project: error = %v", err)
	}
}

func TestListInvitedUsers(t *testing.T) {
	f := newInvitationFixture(t)
	ctx := context.Background()

	toBob := f.send(t, f.alice, f.bob)
	if _, err := f.svc.ConfirmInvitation(ctx, toBob.Token); err != nil {
		t.Fatalf("ConfirmInvitation() error = %v", err)
	}
	// Membership without any invitation.
	if err := f.store.AddProjectMember(ctx, f.project.ID, f.carol.ID); err != nil {
		t.Fatalf("AddProjectMember() error = %v", err)
	}

	invited, err := f.svc.ListInvitedUsers(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("ListInvitedUsers() error = %v", err)
	}

	got := make(map[string]*models.InvitedUser)
	for _, u := range invited {
		got[u.ID] = u
	}
	if len(got) != 2 {
		t.Fatalf("invited users = %d, want 2", len(got))
	}
	if b := got[f.bob.ID]; b == nil || b.InvitationStatus != models.InvitationStatusAccepted || b.Name != "bob" || b.Email != f.bob.Email {
		t.Fatalf("unexpected entry for bob: %+v", b)
	}
	if c := got[f.carol.ID]; c == nil || c.InvitationStatus != models.InvitationStatusUnknown {
		t.Fatalf("unexpected entry for carol: %+v", c)
	}

	_, err = f.svc.ListInvitedUsers(ctx, "999")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project: error = %v", err)
	}
}

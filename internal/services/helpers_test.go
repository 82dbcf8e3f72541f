package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/notify"
	"github.com/oponion/oponion-api/internal/repository/memory"
)

var testPasswordParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Invitation
	err  error
}

func (n *fakeNotifier) NotifyInvitation(_ context.Context, invitation notify.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, invitation)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func createUser(t *testing.T, store *memory.Store, username string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "x",
		CreatedAt: now,
		UpdatedAt: now,
	}
	info := &models.UserInfo{Email: user.Email, JoinedAt: now}
	err := store.CreateUser(context.Background(), user, info)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return user
}

func createProject(t *testing.T, store *memory.Store, ownerID, name string) *models.Project {
	t.Helper()

	now := time.Now()
	project := &models.Project{
		UserID:    ownerID,
		Name:      name,
		Status:    models.ProjectStatusActive,
		Color:     models.DefaultProjectColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := store.CreateProject(context.Background(), project)
	if err != nil {
		t.Fatalf("CreateProject(%s) error = %v", name, err)
	}
	return project
}

func newInvitationService(store *memory.Store, notifier notify.Notifier) InvitationService {
	return NewInvitationService(zerolog.Nop(), store, store, store, notifier)
}

func memberIDs(t *testing.T, store *memory.Store, projectID string) []string {
	t.Helper()

	members, err := store.ListProjectMembers(context.Background(), projectID)
	if err != nil {
		t.Fatalf("ListProjectMembers() error = %v", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

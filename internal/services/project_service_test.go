package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository/memory"
)

func TestCreateProjectDefaults(t *testing.T) {
	store := memory.New()
	svc := NewProjectService(zerolog.Nop(), store)
	alice := createUser(t, store, "alice")

	project, err := svc.CreateProject(context.Background(), CreateProjectParams{UserID: alice.ID, Name: " Apollo "})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Name != "Apollo" ||
		project.Status != models.ProjectStatusActive ||
		project.Color != models.DefaultProjectColor ||
		project.Progress != 0 {
		t.Fatalf("unexpected defaults %+v", project)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	store := memory.New()
	svc := NewProjectService(zerolog.Nop(), store)
	alice := createUser(t, store, "alice")

	long := make([]byte, maxProjectNameLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		params CreateProjectParams
	}{
		{name: "empty name", params: CreateProjectParams{UserID: alice.ID}},
		{name: "long name", params: CreateProjectParams{UserID: alice.ID, Name: string(long)}},
		{name: "progress above 100", params: CreateProjectParams{UserID: alice.ID, Name: "p", Progress: 101}},
		{name: "negative progress", params: CreateProjectParams{UserID: alice.ID, Name: "p", Progress: -1}},
		{name: "unknown status", params: CreateProjectParams{UserID: alice.ID, Name: "p", Status: "archived"}},
		{name: "color with alpha", params: CreateProjectParams{UserID: alice.ID, Name: "p", Color: "#3B82F6CC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), tt.params)
			if !errors.Is(err, ErrInvalidProject) {
				t.Fatalf("error = %v, want ErrInvalidProject", err)
			}
		})
	}
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	store := memory.New()
	svc := NewProjectService(zerolog.Nop(), store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	project := createProject(t, store, alice.ID, "Apollo")
	if err := store.AddProjectMember(ctx, project.ID, bob.ID); err != nil {
		t.Fatalf("AddProjectMember() error = %v", err)
	}

	progress := 40
	status := models.ProjectStatusPaused
	_, err := svc.UpdateProject(ctx, UpdateProjectParams{ID: project.ID, UserID: bob.ID, Progress: &progress})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("member update: error = %v, want ErrProjectNotFound", err)
	}

	updated, err := svc.UpdateProject(ctx, UpdateProjectParams{ID: project.ID, UserID: alice.ID, Progress: &progress, Status: &status})
	if err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	if updated.Progress != 40 || updated.Status != models.ProjectStatusPaused || updated.Name != "Apollo" {
		t.Fatalf("unexpected project %+v", updated)
	}

	bad := 150
	_, err = svc.UpdateProject(ctx, UpdateProjectParams{ID: project.ID, UserID: alice.ID, Progress: &bad})
	if !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("invalid progress: error = %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	store := memory.New()
	svc := NewProjectService(zerolog.Nop(), store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	project := createProject(t, store, alice.ID, "Apollo")

	if err := svc.DeleteProject(ctx, project.ID, bob.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("foreign delete: error = %v", err)
	}
	if err := svc.DeleteProject(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := svc.GetProject(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("deleted project still found: %v", err)
	}
}

func TestListProjectsIncludesSharedProjects(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	notifier := &fakeNotifier{}
	projects := NewProjectService(zerolog.Nop(), store)
	invitations := newInvitationService(store, notifier)

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	shared := createProject(t, store, alice.ID, "Shared")
	createProject(t, store, bob.ID, "Own")

	invitation, err := invitations.SendInvitation(ctx, SendInvitationParams{FromUserID: alice.ID, ToUserID: bob.ID, ProjectID: shared.ID})
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}
	if _, err := invitations.ConfirmInvitation(ctx, invitation.Token); err != nil {
		t.Fatalf("ConfirmInvitation() error = %v", err)
	}

	list, err := projects.ListProjects(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d projects, want 2", len(list))
	}

	byName, err := projects.GetProjectByName(ctx, "Shared")
	if err != nil {
		t.Fatalf("GetProjectByName() error = %v", err)
	}
	if !byName.HasAccess(bob.ID) {
		t.Fatalf("bob is not listed as member: %v", byName.InvitedUserIDs)
	}
	if _, err := projects.GetProjectByName(ctx, "Missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown name: error = %v", err)
	}
}

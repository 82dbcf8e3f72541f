package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository/memory"
)

func TestTaskLifecycle(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(zerolog.Nop(), store, store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	project := createProject(t, store, alice.ID, "Apollo")

	task, err := svc.CreateTask(ctx, CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, Text: "write docs"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.AssignedTo != alice.ID || task.Status != models.TaskStatusNew {
		t.Fatalf("unexpected defaults %+v", task)
	}

	text := "write more docs"
	updated, err := svc.UpdateTask(ctx, UpdateTaskParams{ID: task.ID, UserID: alice.ID, Status: models.TaskStatusDone, Text: &text})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Status != models.TaskStatusDone || updated.Text != text {
		t.Fatalf("unexpected task %+v", updated)
	}

	_, err = svc.UpdateTask(ctx, UpdateTaskParams{ID: task.ID, UserID: alice.ID, Status: "blocked"})
	if !errors.Is(err, ErrInvalidTaskStatus) {
		t.Fatalf("invalid status: error = %v", err)
	}

	if err := svc.DeleteTask(ctx, task.ID, alice.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID, alice.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("deleted task: error = %v", err)
	}
}

func TestTaskAccess(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(zerolog.Nop(), store, store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	mallory := createUser(t, store, "mallory")
	project := createProject(t, store, alice.ID, "Apollo")
	if err := store.AddProjectMember(ctx, project.ID, bob.ID); err != nil {
		t.Fatalf("AddProjectMember() error = %v", err)
	}

	task, err := svc.CreateTask(ctx, CreateTaskParams{UserID: bob.ID, ProjectID: project.ID, Text: "member task"})
	if err != nil {
		t.Fatalf("member CreateTask() error = %v", err)
	}

	_, err = svc.CreateTask(ctx, CreateTaskParams{UserID: mallory.ID, ProjectID: project.ID, Text: "nope"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger create: error = %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID, mallory.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get: error = %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID, mallory.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: error = %v", err)
	}
	_, err = svc.ListTasks(ctx, ListTasksParams{UserID: mallory.ID, ProjectID: project.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger list: error = %v", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(zerolog.Nop(), store, store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	project := createProject(t, store, alice.ID, "Apollo")

	tests := []struct {
		name   string
		params CreateTaskParams
		want   error
	}{
		{name: "empty text", params: CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, Text: "  "}, want: ErrInvalidTask},
		{name: "bad status", params: CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, Text: "x", Status: "later"}, want: ErrInvalidTaskStatus},
		{name: "unknown assignee", params: CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, Text: "x", AssignedTo: "ghost"}, want: ErrUserNotFound},
		{name: "unknown project", params: CreateTaskParams{UserID: alice.ID, ProjectID: "999", Text: "x"}, want: ErrProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListTasks(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(zerolog.Nop(), store, store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	project := createProject(t, store, alice.ID, "Apollo")

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTask(ctx, CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, Text: "mine"})
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}
	_, err := svc.CreateTask(ctx, CreateTaskParams{UserID: alice.ID, ProjectID: project.ID, AssignedTo: bob.ID, Text: "bob's"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	all, err := svc.ListTasks(ctx, ListTasksParams{UserID: alice.ID, ProjectID: project.ID})
	if err != nil || len(all) != 4 {
		t.Fatalf("project tasks = %d, %v; want 4", len(all), err)
	}

	page, err := svc.ListTasks(ctx, ListTasksParams{UserID: alice.ID, ProjectID: project.ID, Offset: 1, Limit: 2})
	if err != nil || len(page) != 2 {
		t.Fatalf("page = %d, %v; want 2", len(page), err)
	}

	assigned, err := svc.ListTasks(ctx, ListTasksParams{UserID: bob.ID})
	if err != nil || len(assigned) != 1 || assigned[0].Text != "bob's" {
		t.Fatalf("assigned tasks = %+v, %v", assigned, err)
	}
}

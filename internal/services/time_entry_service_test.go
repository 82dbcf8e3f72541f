package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/repository/memory"
)

func newTimeEntryService(store *memory.Store) TimeEntryService {
	return NewTimeEntryService(zerolog.Nop(), store, store, store)
}

func TestTrackedTime(t *testing.T) {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }
	entry := func(user string, typ models.TimeEntryType, minutes int) *models.TimeEntry {
		return &models.TimeEntry{UserID: user, Type: typ, Timestamp: at(minutes)}
	}

	tests := []struct {
		name    string
		entries []*models.TimeEntry
		want    time.Duration
	}{
		{name: "empty", want: 0},
		{
			name: "single interval",
			entries: []*models.TimeEntry{
				entry("a", models.TimeEntryStart, 0),
				entry("a", models.TimeEntryEnd, 30),
			},
			want: 30 * time.Minute,
		},
		{
			name: "open interval ignored",
			entries: []*models.TimeEntry{
				entry("a", models.TimeEntryStart, 0),
				entry("a", models.TimeEntryEnd, 10),
				entry("a", models.TimeEntryStart, 20),
			},
			want: 10 * time.Minute,
		},
		{
			name: "end without start ignored",
			entries: []*models.TimeEntry{
				entry("a", models.TimeEntryEnd, 5),
				entry("a", models.TimeEntryStart, 10),
				entry("a", models.TimeEntryEnd, 15),
			},
			want: 5 * time.Minute,
		},
		{
			name: "interleaved users",
			entries: []*models.TimeEntry{
				entry("a", models.TimeEntryStart, 0),
				entry("b", models.TimeEntryStart, 5),
				entry("a", models.TimeEntryEnd, 20),
				entry("b", models.TimeEntryEnd, 45),
			},
			want: 60 * time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrackedTime(tt.entries); got != tt.want {
				t.Fatalf("TrackedTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2024, 5, 2, 1, 30, 0, 0, loc)

	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(in); !got.Equal(want) {
		t.Fatalf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestTimerRules(t *testing.T) {
	store := memory.New()
	svc := newTimeEntryService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	project := createProject(t, store, alice.ID, "Apollo")

	create := func(typ models.TimeEntryType) error {
		_, err := svc.CreateTimeEntry(ctx, CreateTimeEntryParams{
			UserID:    alice.ID,
			ProjectID: project.ID,
			Type:      typ,
		})
		return err
	}

	if err := create(models.TimeEntryEnd); !errors.Is(err, ErrTimerNotRunning) {
		t.Fatalf("end without start: error = %v", err)
	}
	if err := create(models.TimeEntryStart); err != nil {
		t.Fatalf("start: error = %v", err)
	}

	p, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID() error = %v", err)
	}
	if !p.IsTimerRunning {
		t.Fatal("timer flag not set after start")
	}

	if err := create(models.TimeEntryStart); !errors.Is(err, ErrTimerAlreadyRunning) {
		t.Fatalf("second start: error = %v", err)
	}
	if err := create(models.TimeEntryEnd); err != nil {
		t.Fatalf("end: error = %v", err)
	}

	p, err = store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID() error = %v", err)
	}
	if p.IsTimerRunning {
		t.Fatal("timer flag still set after end")
	}
	if p.TotalTime < 0 || p.TodayTime < 0 {
		t.Fatalf("negative durations: total %v, today %v", p.TotalTime, p.TodayTime)
	}

	if err := create(models.TimeEntryEnd); !errors.Is(err, ErrTimerNotRunning) {
		t.Fatalf("second end: error = %v", err)
	}
	if err := create("pause"); !errors.Is(err, ErrInvalidTimeEntryType) {
		t.Fatalf("invalid type: error = %v", err)
	}

	entries, err := svc.ListTimeEntries(ctx, ListTimeEntriesParams{
		RequesterID: alice.ID,
		Since:       time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("ListTimeEntries() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Type != models.TimeEntryStart || entries[1].Type != models.TimeEntryEnd {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestTimerIsPerUser(t *testing.T) {
	store := memory.New()
	svc := newTimeEntryService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	project := createProject(t, store, alice.ID, "Apollo")
	if err := store.AddProjectMember(ctx, project.ID, bob.ID); err != nil {
		t.Fatalf("AddProjectMember() error = %v", err)
	}

	steps := []struct {
		user    *models.User
		typ     models.TimeEntryType
		wantErr error
		running bool
	}{
		{user: alice, typ: models.TimeEntryStart, running: true},
		{user: bob, typ: models.TimeEntryStart, running: true},
		{user: bob, typ: models.TimeEntryEnd, running: true},
		{user: alice, typ: models.TimeEntryStart, wantErr: ErrTimerAlreadyRunning, running: true},
		{user: alice, typ: models.TimeEntryEnd, running: false},
	}
	for i, step := range steps {
		_, err := svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: step.user.ID, ProjectID: project.ID, Type: step.typ})
		if !errors.Is(err, step.wantErr) {
			t.Fatalf("step %d (%s %s): error = %v, want %v", i, step.user.Username, step.typ, err, step.wantErr)
		}

		p, err := store.GetProjectByID(ctx, project.ID)
		if err != nil {
			t.Fatalf("GetProjectByID() error = %v", err)
		}
		if p.IsTimerRunning != step.running {
			t.Fatalf("step %d (%s %s): running = %v, want %v", i, step.user.Username, step.typ, p.IsTimerRunning, step.running)
		}
	}
}

// editingEntries runs edit after the service has read the project
// and before it records the entry.
type editingEntries struct {
	*memory.Store
	edit func()
}

func (r editingEntries) GetLastTimeEntry(ctx context.Context, projectID, userID string) (*models.TimeEntry, error) {
	r.edit()
	return r.Store.GetLastTimeEntry(ctx, projectID, userID)
}

func TestTimerKeepsConcurrentProjectEdit(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	project := createProject(t, store, alice.ID, "old-name")
	projects := NewProjectService(zerolog.Nop(), store)

	renamed := "renamed"
	entries := editingEntries{Store: store, edit: func() {
		_, err := projects.UpdateProject(ctx, UpdateProjectParams{ID: project.ID, UserID: alice.ID, Name: &renamed})
		if err != nil {
			t.Fatalf("UpdateProject() error = %v", err)
		}
	}}
	svc := NewTimeEntryService(zerolog.Nop(), entries, store, store)

	_, err := svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: alice.ID, ProjectID: project.ID, Type: models.TimeEntryStart})
	if err != nil {
		t.Fatalf("CreateTimeEntry() error = %v", err)
	}

	p, err := store.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID() error = %v", err)
	}
	if p.Name != renamed {
		t.Errorf("name = %q, want %q", p.Name, renamed)
	}
	if !p.IsTimerRunning {
		t.Error("timer flag not set after start")
	}
}

func TestTimeEntryAccess(t *testing.T) {
	store := memory.New()
	svc := newTimeEntryService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	mallory := createUser(t, store, "mallory")
	project := createProject(t, store, alice.ID, "Apollo")
	other := createProject(t, store, mallory.ID, "Other")

	_, err := svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: mallory.ID, ProjectID: project.ID, Type: models.TimeEntryStart})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-member start: error = %v", err)
	}

	_, err = svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: alice.ID, ProjectID: "999", Type: models.TimeEntryStart})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("unknown project: error = %v", err)
	}

	task := &models.Task{ProjectID: other.ID, AssignedTo: mallory.ID, Text: "x", Status: models.TaskStatusNew}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	_, err = svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: alice.ID, ProjectID: project.ID, TaskID: task.ID, Type: models.TimeEntryStart})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("task of another project: error = %v", err)
	}

	_, err = svc.ListTimeEntries(ctx, ListTimeEntriesParams{RequesterID: mallory.ID, ProjectID: project.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("listing foreign project: error = %v", err)
	}
	_, err = svc.ListTimeEntries(ctx, ListTimeEntriesParams{RequesterID: mallory.ID, UserID: alice.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("listing foreign user: error = %v", err)
	}
}

func TestUpdateAndDeleteTimeEntry(t *testing.T) {
	store := memory.New()
	svc := newTimeEntryService(store)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	project := createProject(t, store, alice.ID, "Apollo")

	entry, err := svc.CreateTimeEntry(ctx, CreateTimeEntryParams{UserID: alice.ID, ProjectID: project.ID, Type: models.TimeEntryStart})
	if err != nil {
		t.Fatalf("CreateTimeEntry() error = %v", err)
	}

	ts := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateTimeEntry(ctx, UpdateTimeEntryParams{ID: entry.ID, UserID: alice.ID, Timestamp: &ts})
	if err != nil {
		t.Fatalf("UpdateTimeEntry() error = %v", err)
	}
	if !updated.Timestamp.Equal(ts) || updated.Type != models.TimeEntryStart {
		t.Fatalf("unexpected entry %+v", updated)
	}

	_, err = svc.UpdateTimeEntry(ctx, UpdateTimeEntryParams{ID: entry.ID, UserID: bob.ID, Timestamp: &ts})
	if !errors.Is(err, ErrTimeEntryNotFound) {
		t.Fatalf("foreign update: error = %v", err)
	}
	if err := svc.DeleteTimeEntry(ctx, entry.ID, bob.ID); !errors.Is(err, ErrTimeEntryNotFound) {
		t.Fatalf("foreign delete: error = %v", err)
	}
	if err := svc.DeleteTimeEntry(ctx, entry.ID, alice.ID); err != nil {
		t.Fatalf("DeleteTimeEntry() error = %v", err)
	}
	if err := svc.DeleteTimeEntry(ctx, entry.ID, alice.ID); !errors.Is(err, ErrTimeEntryNotFound) {
		t.Fatalf("second delete: error = %v", err)
	}
}

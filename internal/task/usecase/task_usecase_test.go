package usecase

import (
	"devtodo-backend/internal/task/domain"
	"devtodo-backend/internal/task/repository"
	"errors"
	"testing"
	"time"
)

func newTestUsecase() (*taskUsecase, repository.TaskRepository) {
	repo := repository.NewMemoryTaskRepository()
	uc := NewTaskUsecase(repo).(*taskUsecase)
	return uc, repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTaskValidation(t *testing.T) {
	uc, _ := newTestUsecase()

	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr bool
	}{
		{"blank title", CreateTaskInput{Title: "   "}, true},
		{"bad priority", CreateTaskInput{Title: "x", Priority: "urgent"}, true},
		{"bad source", CreateTaskInput{Title: "x", Source: "slack"}, true},
		{"bad due date", CreateTaskInput{Title: "x", DueDate: strPtr("tomorrow")}, true},
		{"valid", CreateTaskInput{Title: " Ship it ", DueDate: strPtr("2026-03-01")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := uc.CreateTask(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTask) {
					t.Fatalf("expected ErrInvalidTask, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.Title != "Ship it" {
				t.Errorf("expected trimmed title, got %q", task.Title)
			}
			if task.Priority != domain.PriorityMedium || task.Source != domain.SourceManual {
				t.Errorf("expected defaults, got %s/%s", task.Priority, task.Source)
			}
			if task.DueDate == nil || task.DueDate.Day() != 1 {
				t.Errorf("expected due date to be parsed, got %v", task.DueDate)
			}
		})
	}
}

func TestUpdateTaskCompletedAtTransitions(t *testing.T) {
	uc, _ := newTestUsecase()
	fixed := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	task, err := uc.CreateTask(CreateTaskInput{Title: "Write tests"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	done, err := uc.UpdateTask(task.ID, TaskUpdateRequest{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(fixed) {
		t.Fatalf("expected completedAt to be set, got %+v", done)
	}

	// Re-sending completed=true must not move completedAt.
	uc.now = func() time.Time { return fixed.Add(time.Hour) }
	again, _ := uc.UpdateTask(task.ID, TaskUpdateRequest{Completed: boolPtr(true)})
	if !again.CompletedAt.Equal(fixed) {
		t.Errorf("completedAt moved to %v", again.CompletedAt)
	}

	reopened, _ := uc.UpdateTask(task.ID, TaskUpdateRequest{Completed: boolPtr(false)})
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Errorf("expected completedAt to be cleared, got %+v", reopened)
	}
}

func TestUpdateTaskErrors(t *testing.T) {
	uc, _ := newTestUsecase()

	if _, err := uc.UpdateTask("missing", TaskUpdateRequest{Title: strPtr("x")}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	task, _ := uc.CreateTask(CreateTaskInput{Title: "Keep"})
	if _, err := uc.UpdateTask(task.ID, TaskUpdateRequest{Title: strPtr("  ")}); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask for blank title, got %v", err)
	}
	if _, err := uc.UpdateTask(task.ID, TaskUpdateRequest{Priority: strPtr("meh")}); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask for bad priority, got %v", err)
	}

	same, err := uc.UpdateTask(task.ID, TaskUpdateRequest{})
	if err != nil || same.Title != "Keep" {
		t.Errorf("expected no-op update to return the task, got %+v, %v", same, err)
	}
}

func TestListTasksFilters(t *testing.T) {
	uc, _ := newTestUsecase()
	_, _ = uc.CreateTask(CreateTaskInput{Title: "Restart postgres container", Source: "docker"})
	_, _ = uc.CreateTask(CreateTaskInput{Title: "Reply to landlord", Source: "gmail"})
	_, _ = uc.CreateTask(CreateTaskInput{Title: "Buy milk", Notes: strPtr("from the postgres shop")})

	tasks, err := uc.ListTasks(TaskQuery{Query: "postgres"})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected title and notes matches, got %d", len(tasks))
	}

	tasks, _ = uc.ListTasks(TaskQuery{Source: strPtr("gmail")})
	if len(tasks) != 1 || tasks[0].Source != domain.SourceGmail {
		t.Errorf("expected one gmail task, got %+v", tasks)
	}

	if _, err := uc.ListTasks(TaskQuery{Source: strPtr("fax")}); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask for unknown source, got %v", err)
	}

	tasks, _ = uc.ListTasks(TaskQuery{Completed: boolPtr(true)})
	if len(tasks) != 0 {
		t.Errorf("expected no completed tasks, got %d", len(tasks))
	}
}

func TestDeleteTask(t *testing.T) {
	uc, _ := newTestUsecase()
	task, _ := uc.CreateTask(CreateTaskInput{Title: "Temp"})

	if err := uc.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := uc.DeleteTask(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

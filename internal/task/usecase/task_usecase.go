package usecase

import (
	"devtodo-backend/internal/task/domain"
	"devtodo-backend/internal/task/repository"
	"devtodo-backend/pkg/fuzzy"
	"fmt"
	"strings"
	"time"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

func (u *taskUsecase) CreateTask(input CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}

	priority := domain.PriorityMedium
	if input.Priority != "" {
		priority = domain.Priority(input.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, input.Priority)
		}
	}

	source := domain.SourceManual
	if input.Source != "" {
		source = domain.Source(input.Source)
		if !source.Valid() {
			return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidTask, input.Source)
		}
	}

	task := &domain.Task{
		Title:             title,
		Priority:          priority,
		Source:            source,
		Notes:             nonEmpty(input.Notes),
		DockerContainerID: nonEmpty(input.DockerContainerID),
		CalendarEventID:   nonEmpty(input.CalendarEventID),
		EmailID:           nonEmpty(input.EmailID),
	}

	if input.DueDate != nil && *input.DueDate != "" {
		due, err := parseDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}

	if err := u.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) GetTaskByID(taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (u *taskUsecase) ListTasks(query TaskQuery) ([]*domain.Task, error) {
	filter := domain.TaskFilter{Completed: query.Completed}
	if query.Source != nil && *query.Source != "" {
		source := domain.Source(*query.Source)
		if !source.Valid() {
			return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidTask, *query.Source)
		}
		filter.Source = &source
	}

	tasks, err := u.taskRepo.List(filter)
	if err != nil {
		return nil, err
	}

	q := strings.TrimSpace(query.Query)
	if q == "" {
		return tasks, nil
	}

	threshold := fuzzy.SearchThreshold(q)
	matched := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if fuzzy.FuzzyMatch(q, task.Title, threshold) ||
			(task.Notes != nil && fuzzy.FuzzyMatch(q, *task.Notes, threshold)) {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

func (u *taskUsecase) UpdateTask(taskID string, updates TaskUpdateRequest) (*domain.Task, error) {
	task, err := u.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if updates.Title != nil {
		title := strings.TrimSpace(*updates.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidTask)
		}
		fields[domain.FieldTitle] = title
	}
	if updates.Priority != nil {
		priority := domain.Priority(*updates.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, *updates.Priority)
		}
		fields[domain.FieldPriority] = string(priority)
	}
	if updates.DueDate != nil {
		if *updates.DueDate == "" {
			fields[domain.FieldDueDate] = nil
		} else {
			due, err := parseDate(*updates.DueDate)
			if err != nil {
				return nil, err
			}
			fields[domain.FieldDueDate] = due
		}
	}
	if updates.Notes != nil {
		if *updates.Notes == "" {
			fields[domain.FieldNotes] = nil
		} else {
			fields[domain.FieldNotes] = *updates.Notes
		}
	}

	// completedAt follows the completed flag only on an actual transition
	if updates.Completed != nil && *updates.Completed != task.Completed {
		fields[domain.FieldCompleted] = *updates.Completed
		if *updates.Completed {
			fields[domain.FieldCompletedAt] = u.now()
		} else {
			fields[domain.FieldCompletedAt] = nil
		}
	}

	if len(fields) == 0 {
		return task, nil
	}

	updated, err := u.taskRepo.Update(taskID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTaskNotFound
	}
	return updated, nil
}

func (u *taskUsecase) DeleteTask(taskID string) error {
	deleted, err := u.taskRepo.Delete(taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// parseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidTask, value)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"devtodo-backend/internal/docker/domain"
	taskdomain "devtodo-backend/internal/task/domain"
	taskrepository "devtodo-backend/internal/task/repository"
	"devtodo-backend/pkg/docker"
)

// AutoCompleter completes pending docker tasks once the container reaches
// the state the task title asks for
type AutoCompleter struct {
	engine  Engine
	actions *ActionLog
	tasks   taskrepository.TaskRepository
	now     func() time.Time
}

// NewAutoCompleter creates a new AutoCompleter
func NewAutoCompleter(engine Engine, actions *ActionLog, tasks taskrepository.TaskRepository) *AutoCompleter {
	return &AutoCompleter{
		engine:  engine,
		actions: actions,
		tasks:   tasks,
		now:     time.Now,
	}
}

// Run checks every pending docker task against the current containers and
// returns the ids it completed. Only completed and completedAt are written.
func (a *AutoCompleter) Run(ctx context.Context) ([]string, error) {
	containers, err := a.engine.ListContainers(ctx)
	if err != nil {
		return nil, wrapEngineError("list containers", err)
	}

	source := taskdomain.SourceDocker
	pending := false
	tasks, err := a.tasks.List(taskdomain.TaskFilter{Completed: &pending, Source: &source})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending docker tasks: %w", err)
	}

	completed := make([]string, 0)
	var errs []error
	for _, task := range tasks {
		for _, container := range containers {
			if !matchesContainer(task, container) || !a.satisfied(task, container) {
				continue
			}

			now := a.now()
			ok, err := a.tasks.CompleteIfPending(task.ID, map[string]interface{}{
				taskdomain.FieldCompleted:   true,
				taskdomain.FieldCompletedAt: now,
			})
			if err != nil {
				log.Printf("[Docker] Failed to auto-complete task %s: %v", task.ID, err)
				errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			} else if ok {
				log.Printf("[Docker] Auto-completed %q after %s", task.Title, container.Name())
				completed = append(completed, task.ID)
			}
			break
		}
	}

	return completed, errors.Join(errs...)
}

func matchesContainer(task *taskdomain.Task, container docker.Container) bool {
	if task.DockerContainerID != nil && *task.DockerContainerID != "" {
		id := *task.DockerContainerID
		if id == container.ID || id == shortID(container.ID) {
			return true
		}
	}
	name := strings.ToLower(container.Name())
	return name != "" && strings.Contains(strings.ToLower(task.Title), name)
}

// satisfied applies the title rule to an action recorded after the task was created.
// "restart" is checked before "start" since one contains the other.
func (a *AutoCompleter) satisfied(task *taskdomain.Task, container docker.Container) bool {
	action := a.actions.Get(shortID(container.ID), container.ID)
	if action == nil || !action.Timestamp.After(task.CreatedAt) {
		return false
	}

	title := strings.ToLower(task.Title)
	switch {
	case strings.Contains(title, "restart"):
		return action.Action == "restart"
	case strings.Contains(title, "stop"):
		return container.State == domain.StateExited
	case strings.Contains(title, "start"):
		return container.State == domain.StateRunning
	}
	return false
}

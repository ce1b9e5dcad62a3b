package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/internal/claude/repository"
	taskdomain "devtodo-backend/internal/task/domain"
	taskusecase "devtodo-backend/internal/task/usecase"
)

// DismissedTask is a dismissed id with its state
type DismissedTask struct {
	ID string `json:"id"`
	domain.TaskState
}

type stateTracker struct {
	documents repository.DocumentRepository
	tasks     TaskCreator
	// trigger starts a background extraction after a restore
	trigger func()
	now     func() time.Time
}

// NewStateTracker creates the extracted task state tracker. trigger may be nil
func NewStateTracker(documents repository.DocumentRepository, tasks TaskCreator, trigger func()) StateUsecase {
	return &stateTracker{
		documents: documents,
		tasks:     tasks,
		trigger:   trigger,
		now:       time.Now,
	}
}

func (s *stateTracker) Dismiss(ctx context.Context, id string) error {
	if !ValidTaskID(id) {
		return ErrInvalidTaskID
	}

	return s.documents.Update(ctx, func(doc *domain.Document) error {
		now := s.now()
		doc.TaskState[id] = domain.TaskState{Status: domain.StatusDismissed, DismissedAt: &now}

		kept := doc.Tasks[:0]
		for _, task := range doc.Tasks {
			if task.ID != id {
				kept = append(kept, task)
			}
		}
		doc.Tasks = kept
		log.Printf("[StateTracker] Dismissed %s", id)
		return nil
	})
}

// Restore clears any state for id. The task comes back only if a later run
// still finds its message among the most recent candidates.
func (s *stateTracker) Restore(ctx context.Context, id string) error {
	if !ValidTaskID(id) {
		return ErrInvalidTaskID
	}

	err := s.documents.Update(ctx, func(doc *domain.Document) error {
		delete(doc.TaskState, id)
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[StateTracker] Restored %s", id)
	if s.trigger != nil {
		s.trigger()
	}
	return nil
}

func (s *stateTracker) MarkImported(ctx context.Context, id, linkedTaskID string) (string, error) {
	if !ValidTaskID(id) {
		return "", ErrInvalidTaskID
	}

	if linkedTaskID == "" {
		created, err := s.createLinkedTask(ctx, id)
		if err != nil {
			return "", err
		}
		linkedTaskID = created.ID
	}

	err := s.documents.Update(ctx, func(doc *domain.Document) error {
		now := s.now()
		doc.TaskState[id] = domain.TaskState{
			Status:       domain.StatusImported,
			ImportedAt:   &now,
			LinkedTaskID: linkedTaskID,
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[StateTracker] Imported %s as task %s", id, linkedTaskID)
	return linkedTaskID, nil
}

func (s *stateTracker) createLinkedTask(ctx context.Context, id string) (*taskdomain.Task, error) {
	doc, err := s.documents.Load(ctx)
	if err != nil {
		return nil, err
	}

	var source *domain.ExtractedTask
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			source = &doc.Tasks[i]
			break
		}
	}
	if source == nil {
		return nil, ErrExtractedTaskNotFound
	}

	notes := source.Description
	if source.Context != "" {
		if notes != "" {
			notes += "\n\n"
		}
		notes += "Context: " + source.Context
	}

	input := taskusecase.CreateTaskInput{
		Title:    source.Title,
		Priority: string(taskdomain.PriorityMedium),
		Source:   string(taskdomain.SourceClaude),
	}
	if notes != "" {
		input.Notes = &notes
	}

	created, err := s.tasks.CreateTask(input)
	if err != nil {
		return nil, fmt.Errorf("create task for %s: %w", id, err)
	}
	return created, nil
}

func (s *stateTracker) ListDismissed(ctx context.Context) ([]DismissedTask, error) {
	doc, err := s.documents.Load(ctx)
	if err != nil {
		return nil, err
	}

	dismissed := []DismissedTask{}
	for id, state := range doc.TaskState {
		if state.Status == domain.StatusDismissed {
			dismissed = append(dismissed, DismissedTask{ID: id, TaskState: state})
		}
	}
	sort.Slice(dismissed, func(i, j int) bool {
		return dismissed[i].ID < dismissed[j].ID
	})
	return dismissed, nil
}

package usecase

import (
	"devtodo-backend/internal/task/domain"
	"devtodo-backend/internal/task/repository"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrInvalidCommit is returned when a commit payload has no usable message
var ErrInvalidCommit = errors.New("invalid commit payload")

// CommitEvent is what the post-commit hook reports
type CommitEvent struct {
	Message string
	Repo    string
	Branch  string
	Hash    string
	Author  string
}

// CommitMatcher completes pending tasks whose title appears in a commit message
type CommitMatcher struct {
	taskRepo repository.TaskRepository
	repoRepo repository.GitRepoRepository
	now      func() time.Time
}

// NewCommitMatcher creates a new CommitMatcher
func NewCommitMatcher(taskRepo repository.TaskRepository, repoRepo repository.GitRepoRepository) *CommitMatcher {
	return &CommitMatcher{
		taskRepo: taskRepo,
		repoRepo: repoRepo,
		now:      time.Now,
	}
}

// CompleteMatchingTasks marks every pending task whose lowercased title is a
// substring of the lowercased message as completed by git.
//
// Every match is attempted. Ids stamped before a storage failure are still
// returned alongside the joined error. A task that is already completed is
// never stamped again, so replaying a commit matches nothing.
func (m *CommitMatcher) CompleteMatchingTasks(event CommitEvent) ([]string, error) {
	if event.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidCommit)
	}

	now := m.now()

	if event.Repo != "" {
		if _, err := m.repoRepo.Upsert(event.Repo, now); err != nil {
			return nil, fmt.Errorf("failed to upsert repo %s: %w", event.Repo, err)
		}
	}

	pending, err := m.taskRepo.FindPending()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending tasks: %w", err)
	}

	message := strings.ToLower(event.Message)
	fields := provenance(event, now)

	completed := make([]string, 0)
	var errs []error
	for _, task := range pending {
		title := strings.ToLower(task.Title)
		if title == "" || !strings.Contains(message, title) {
			continue
		}

		ok, err := m.taskRepo.CompleteIfPending(task.ID, fields)
		if err != nil {
			log.Printf("[CommitMatcher] Failed to complete task %s: %v", task.ID, err)
			errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			continue
		}
		if ok {
			completed = append(completed, task.ID)
		}
	}

	if len(completed) > 0 {
		log.Printf("[CommitMatcher] Commit %s completed %d task(s)", shortHash(event.Hash), len(completed))
	}

	return completed, errors.Join(errs...)
}

func provenance(event CommitEvent, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		domain.FieldCompleted:        true,
		domain.FieldCompletedAt:      now,
		domain.FieldAutoCompleted:    true,
		domain.FieldCompletedBy:      domain.CompletedByGit,
		domain.FieldGitCommitHash:    optional(event.Hash),
		domain.FieldGitCommitRepo:    optional(event.Repo),
		domain.FieldGitCommitBranch:  optional(event.Branch),
		domain.FieldGitCommitMessage: event.Message,
		domain.FieldGitCommitAuthor:  optional(event.Author),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	if hash == "" {
		return "(no hash)"
	}
	return hash
}

package repository

import (
	"devtodo-backend/internal/task/domain"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryTaskRepository keeps tasks in process memory. It backs the
// STORE_DRIVER=memory mode and the usecase tests.
type memoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	now   func() time.Time
}

// NewMemoryTaskRepository creates an empty in-memory TaskRepository
func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{
		tasks: make(map[string]*domain.Task),
		now:   time.Now,
	}
}

func (r *memoryTaskRepository) Create(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = r.now()
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *memoryTaskRepository) FindByID(id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *memoryTaskRepository) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.Source != nil && task.Source != *filter.Source {
			continue
		}
		copied := *task
		tasks = append(tasks, &copied)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *memoryTaskRepository) FindPending() ([]*domain.Task, error) {
	pending := false
	tasks, err := r.List(domain.TaskFilter{Completed: &pending})
	if err != nil {
		return nil, err
	}
	// Oldest first, matching the SQL store.
	for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	}
	return tasks, nil
}

func (r *memoryTaskRepository) Update(id string, fields map[string]interface{}) (*domain.Task, error) {
	r.mu.Lock()
	task, ok := r.tasks[id]
	if ok {
		applyFields(task, filterFields(fields))
	}
	r.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return r.FindByID(id)
}

func (r *memoryTaskRepository) CompleteIfPending(id string, fields map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.Completed {
		return false, nil
	}
	applyFields(task, filterFields(fields))
	task.Completed = true
	return true, nil
}

func (r *memoryTaskRepository) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tasks[id]
	delete(r.tasks, id)
	return ok, nil
}

// applyFields mirrors what the SQL UPDATE does for each column
func applyFields(task *domain.Task, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case domain.FieldTitle:
			if s := stringPtr(value); s != nil {
				task.Title = *s
			}
		case domain.FieldCompleted:
			task.Completed = boolValue(value)
		case domain.FieldCompletedAt:
			task.CompletedAt = timePtr(value)
		case domain.FieldPriority:
			if s := stringPtr(value); s != nil {
				task.Priority = domain.Priority(*s)
			}
		case domain.FieldDueDate:
			task.DueDate = timePtr(value)
		case domain.FieldNotes:
			task.Notes = stringPtr(value)
		case domain.FieldAutoCompleted:
			task.AutoCompleted = boolValue(value)
		case domain.FieldCompletedBy:
			task.CompletedBy = stringPtr(value)
		case domain.FieldGitCommitHash:
			task.GitCommitHash = stringPtr(value)
		case domain.FieldGitCommitRepo:
			task.GitCommitRepo = stringPtr(value)
		case domain.FieldGitCommitBranch:
			task.GitCommitBranch = stringPtr(value)
		case domain.FieldGitCommitMessage:
			task.GitCommitMessage = stringPtr(value)
		case domain.FieldGitCommitAuthor:
			task.GitCommitAuthor = stringPtr(value)
		}
	}
}

func stringPtr(value interface{}) *string {
	switch v := value.(type) {
	case string:
		return &v
	case *string:
		if v == nil {
			return nil
		}
		s := *v
		return &s
	case domain.Priority:
		s := string(v)
		return &s
	}
	return nil
}

func timePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case *time.Time:
		if v == nil {
			return nil
		}
		t := *v
		return &t
	}
	return nil
}

func boolValue(value interface{}) bool {
	b, _ := value.(bool)
	return b
}

// memoryGitRepoRepository keeps git repos in process memory
type memoryGitRepoRepository struct {
	mu    sync.Mutex
	repos map[string]*domain.GitRepo
}

// NewMemoryGitRepoRepository creates an empty in-memory GitRepoRepository
func NewMemoryGitRepoRepository() GitRepoRepository {
	return &memoryGitRepoRepository{repos: make(map[string]*domain.GitRepo)}
}

func (r *memoryGitRepoRepository) Upsert(name string, at time.Time) (*domain.GitRepo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, ok := r.repos[name]
	if !ok {
		repo = &domain.GitRepo{
			ID:           uuid.New().String(),
			Name:         name,
			FirstSeenAt:  at,
			LastCommitAt: at,
		}
		r.repos[name] = repo
	} else if at.After(repo.LastCommitAt) {
		repo.LastCommitAt = at
	}

	copied := *repo
	return &copied, nil
}

func (r *memoryGitRepoRepository) List() ([]*domain.GitRepo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repos := make([]*domain.GitRepo, 0, len(r.repos))
	for _, repo := range r.repos {
		copied := *repo
		repos = append(repos, &copied)
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].LastCommitAt.After(repos[j].LastCommitAt)
	})
	return repos, nil
}

func (r *memoryGitRepoRepository) DeleteByName(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.repos[name]
	delete(r.repos, name)
	return ok, nil
}

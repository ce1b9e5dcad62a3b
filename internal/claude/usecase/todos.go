package usecase

import (
	"context"
	"sort"
	"time"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/internal/claude/repository"
	"devtodo-backend/pkg/fuzzy"
)

// Todo files touched within this window belong to a session still in progress
const recentSessionWindow = time.Hour

// TaskRef points a todo at the extracted task it matched
type TaskRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Project string `json:"project"`
}

// TodoView is an assistant todo with its session and match
type TodoView struct {
	domain.Todo
	SessionID            string    `json:"sessionId"`
	Source               string    `json:"source"`
	LastModified         time.Time `json:"lastModified"`
	IsRecentSession      bool      `json:"isRecentSession"`
	MatchedExtractedTask *TaskRef  `json:"matchedExtractedTask"`
}

// SyncMatch pairs a todo with the extracted task it corresponds to
type SyncMatch struct {
	TodoContent string `json:"todoContent"`
	TodoStatus  string `json:"todoStatus"`
	TaskID      string `json:"taskId"`
	TaskTitle   string `json:"taskTitle"`
	ShouldSync  bool   `json:"shouldSync"`
}

// SyncStatus summarizes how assistant todos line up with extracted tasks
type SyncStatus struct {
	TotalClaudeTodos    int         `json:"totalClaudeTodos"`
	TotalExtractedTasks int         `json:"totalExtractedTasks"`
	Matches             []SyncMatch `json:"matches"`
	CompletedInClaude   int         `json:"completedInClaude"`
}

type todoUsecase struct {
	todos     repository.TodoRepository
	documents repository.DocumentRepository
	now       func() time.Time
}

// NewTodoUsecase creates the todo matching usecase
func NewTodoUsecase(todos repository.TodoRepository, documents repository.DocumentRepository) TodoUsecase {
	return &todoUsecase{todos: todos, documents: documents, now: time.Now}
}

// ListTodos returns todos newest file first. A missing todo directory is
// returned as the repository's error
func (u *todoUsecase) ListTodos(ctx context.Context) ([]TodoView, error) {
	files, err := u.todos.ListTodoFiles(ctx)
	if err != nil {
		return []TodoView{}, err
	}
	tasks := u.extractedTasks(ctx)
	now := u.now()

	views := []TodoView{}
	for _, file := range files {
		recent := now.Sub(file.ModTime) < recentSessionWindow
		for _, todo := range file.Todos {
			view := TodoView{
				Todo:            todo,
				SessionID:       file.SessionID,
				Source:          "claude-todo",
				LastModified:    file.ModTime,
				IsRecentSession: recent,
			}
			if task := matchTodo(todo, tasks); task != nil {
				view.MatchedExtractedTask = &TaskRef{ID: task.ID, Title: task.Title, Project: task.Project}
			}
			views = append(views, view)
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].LastModified.After(views[j].LastModified)
	})
	return views, nil
}

// SyncStatus treats an unreadable todo directory as having no todos
func (u *todoUsecase) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	files, err := u.todos.ListTodoFiles(ctx)
	if err != nil {
		files = nil
	}
	tasks := u.extractedTasks(ctx)

	status := &SyncStatus{TotalExtractedTasks: len(tasks), Matches: []SyncMatch{}}
	for _, file := range files {
		for _, todo := range file.Todos {
			status.TotalClaudeTodos++
			task := matchTodo(todo, tasks)
			if task == nil {
				continue
			}
			match := SyncMatch{
				TodoContent: todo.Content,
				TodoStatus:  todo.Status,
				TaskID:      task.ID,
				TaskTitle:   task.Title,
				ShouldSync:  todo.Status == "completed",
			}
			if match.ShouldSync {
				status.CompletedInClaude++
			}
			status.Matches = append(status.Matches, match)
		}
	}
	return status, nil
}

// extractedTasks is best effort; an unreadable document matches nothing
func (u *todoUsecase) extractedTasks(ctx context.Context) []domain.ExtractedTask {
	doc, err := u.documents.Load(ctx)
	if err != nil {
		return nil
	}
	return doc.Tasks
}

// matchTodo returns the first extracted task the todo refers to
func matchTodo(todo domain.Todo, tasks []domain.ExtractedTask) *domain.ExtractedTask {
	if todo.Content == "" {
		return nil
	}
	for i := range tasks {
		if fuzzy.MatchesTodo(todo.Content, tasks[i].Title) {
			return &tasks[i]
		}
	}
	return nil
}

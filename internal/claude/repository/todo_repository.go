package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"devtodo-backend/internal/claude/domain"
)

type todoRepository struct {
	dir string
}

// NewTodoRepository reads dataPath/todos/*.json
func NewTodoRepository(dataPath string) TodoRepository {
	return &todoRepository{dir: filepath.Join(dataPath, "todos")}
}

func (r *todoRepository) ListTodoFiles(ctx context.Context) ([]domain.TodoFile, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	var files []domain.TodoFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			continue
		}
		var todos []domain.Todo
		if err := json.Unmarshal(data, &todos); err != nil {
			continue
		}

		files = append(files, domain.TodoFile{
			File:      name,
			SessionID: sessionFromTodoFile(name),
			ModTime:   info.ModTime(),
			Todos:     todos,
		})
	}
	return files, nil
}

// Todo files are named <session>-agent-<agent>.json
func sessionFromTodoFile(name string) string {
	session, _, _ := strings.Cut(strings.TrimSuffix(name, ".json"), "-agent-")
	return session
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/pkg/filelock"
)

// DocumentFileName is the file kept in DATA_DIR
const DocumentFileName = "extracted-tasks.json"

type documentRepository struct {
	path string
	// mu orders writers inside this process; the file lock orders processes
	mu sync.Mutex

	// beforeRename runs after the new document is fully written to its
	// temp file and before it replaces the old one
	beforeRename func()
}

// NewDocumentRepository stores the document at dataDir/extracted-tasks.json
func NewDocumentRepository(dataDir string) DocumentRepository {
	return &documentRepository{path: filepath.Join(dataDir, DocumentFileName)}
}

func (r *documentRepository) Load(ctx context.Context) (*domain.Document, error) {
	return r.read()
}

func (r *documentRepository) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	unlock, err := filelock.Lock(r.path)
	if err != nil {
		return fmt.Errorf("lock extracted tasks: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := r.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.write(doc)
}

func (r *documentRepository) read() (*domain.Document, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read extracted tasks: %w", err)
	}

	doc := domain.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode extracted tasks: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []domain.ExtractedTask{}
	}
	if doc.TaskState == nil {
		doc.TaskState = make(map[string]domain.TaskState)
	}
	return doc, nil
}

// write replaces the document by renaming a fully written temp file over it,
// so readers see either the old or the new document in full
func (r *documentRepository) write(doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode extracted tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".extracted-tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if r.beforeRename != nil {
		r.beforeRename()
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace extracted tasks: %w", err)
	}
	return nil
}

package repository

import (
	"devtodo-backend/internal/task/domain"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) (TaskRepository, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, err
	}
	return &gormTaskRepository{db: db}, nil
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	return r.db.Create(task).Error
}

func (r *gormTaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task

	query := r.db.Model(&domain.Task{})
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}

	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) FindPending() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("completed = ?", false).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) Update(id string, fields map[string]interface{}) (*domain.Task, error) {
	allowed := filterFields(fields)
	if len(allowed) == 0 {
		return r.FindByID(id)
	}

	if err := r.db.Model(&domain.Task{}).Where("id = ?", id).Updates(allowed).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

func (r *gormTaskRepository) CompleteIfPending(id string, fields map[string]interface{}) (bool, error) {
	allowed := filterFields(fields)
	allowed[domain.FieldCompleted] = true

	// The completed = false guard makes this a compare-and-set: two writers
	// racing on the same task cannot both stamp it.
	result := r.db.Model(&domain.Task{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(allowed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gormTaskRepository) Delete(id string) (bool, error) {
	result := r.db.Delete(&domain.Task{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// gormGitRepoRepository implements GitRepoRepository using GORM
type gormGitRepoRepository struct {
	db *gorm.DB
}

// NewGormGitRepoRepository creates a new GORM-based GitRepoRepository
func NewGormGitRepoRepository(db *gorm.DB) (GitRepoRepository, error) {
	if err := db.AutoMigrate(&domain.GitRepo{}); err != nil {
		return nil, err
	}
	return &gormGitRepoRepository{db: db}, nil
}

func (r *gormGitRepoRepository) Upsert(name string, at time.Time) (*domain.GitRepo, error) {
	repo := &domain.GitRepo{
		ID:           uuid.New().String(),
		Name:         name,
		FirstSeenAt:  at,
		LastCommitAt: at,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_commit_at": gorm.Expr("GREATEST(git_repos.last_commit_at, EXCLUDED.last_commit_at)"),
		}),
	}).Create(repo).Error
	if err != nil {
		return nil, err
	}

	var stored domain.GitRepo
	if err := r.db.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormGitRepoRepository) List() ([]*domain.GitRepo, error) {
	var repos []*domain.GitRepo
	err := r.db.Order("last_commit_at DESC").Find(&repos).Error
	return repos, err
}

func (r *gormGitRepoRepository) DeleteByName(name string) (bool, error) {
	result := r.db.Where("name = ?", name).Delete(&domain.GitRepo{})
	return result.RowsAffected > 0, result.Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/models"
)

// TaskRepository defines persistence operations for the task bank.
type TaskRepository interface {
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Task, error)
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	CountOwnedByIDs(ctx context.Context, teacherID uint, ids []uint) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("created_by = ?", teacherID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) CountOwnedByIDs(ctx context.Context, teacherID uint, ids []uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id IN ? AND created_by = ?", ids, teacherID).
		Count(&count).Error
	return count, err
}

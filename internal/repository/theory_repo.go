package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/models"
)

// TheoryRepository defines persistence operations for theory materials.
type TheoryRepository interface {
	List(ctx context.Context) ([]models.Theory, error)
	Create(ctx context.Context, theory *models.Theory) error
}

type theoryRepository struct {
	db *gorm.DB
}

// NewTheoryRepository instantiates the repository.
func NewTheoryRepository(db *gorm.DB) TheoryRepository {
	return &theoryRepository{db: db}
}

func (r *theoryRepository) List(ctx context.Context) ([]models.Theory, error) {
	var items []models.Theory
	err := r.db.WithContext(ctx).
		Order("ege_number ASC, created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *theoryRepository) Create(ctx context.Context, theory *models.Theory) error {
	return r.db.WithContext(ctx).Create(theory).Error
}

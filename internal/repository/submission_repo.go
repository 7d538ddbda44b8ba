package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/models"
)

// CheckedStats aggregates the graded submissions of one student's variant.
type CheckedStats struct {
	Checked  int64
	AvgScore float64
}

// SubmissionRepository defines data operations for answer submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByItemAndStudent(ctx context.Context, itemID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	CountForVariant(ctx context.Context, variantID, studentID uint) (int64, error)
	CheckedStatsForVariant(ctx context.Context, variantID, studentID uint) (CheckedStats, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByItemAndStudent(ctx context.Context, itemID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("variant_item_id = ? AND student_id = ?", itemID, studentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) CountForVariant(ctx context.Context, variantID, studentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN variant_items ON variant_items.id = submissions.variant_item_id").
		Where("variant_items.variant_id = ? AND submissions.student_id = ?", variantID, studentID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) CheckedStatsForVariant(ctx context.Context, variantID, studentID uint) (CheckedStats, error) {
	var stats CheckedStats
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("COUNT(*) AS checked, COALESCE(AVG(submissions.score), 0) AS avg_score").
		Joins("JOIN variant_items ON variant_items.id = submissions.variant_item_id").
		Where("variant_items.variant_id = ? AND submissions.student_id = ? AND submissions.status = ?",
			variantID, studentID, models.SubmissionStatusChecked).
		Scan(&stats).Error
	return stats, err
}

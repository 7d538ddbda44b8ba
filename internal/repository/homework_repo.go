package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/models"
)

// SetWithCount is a homework set row joined with its task count.
type SetWithCount struct {
	models.HomeworkSet
	TaskCount int64
}

// ItemOwnership identifies the variant, student and set owner a variant item
// belongs to.
type ItemOwnership struct {
	VariantItemID uint
	VariantID     uint
	StudentID     uint
	TeacherID     uint
}

// VariantTaskRow is one variant item joined with its task fields and the
// student's submission when present.
type VariantTaskRow struct {
	VariantItemID    uint
	TaskID           uint
	Title            string
	Text             string
	Type             string
	EGENumber        *int `gorm:"column:ege_number"`
	Difficulty       int
	SubmissionID     *uint
	AnswerText       *string
	AnswerFileURL    *string
	AnswerCode       *string
	AnswerImageURL   *string
	AnswerTable      *string
	Score            *float64
	SubmissionStatus *string
	SubmittedAt      *time.Time
}

// HomeworkRepository defines persistence operations for homework sets,
// variants and variant items.
type HomeworkRepository interface {
	ListSetsByTeacher(ctx context.Context, teacherID uint) ([]SetWithCount, error)
	GetSetByID(ctx context.Context, id uint) (models.HomeworkSet, error)
	CreateSet(ctx context.Context, set *models.HomeworkSet, taskIDs []uint) error
	ListSetTaskIDs(ctx context.Context, setID uint) ([]uint, error)
	GetVariantByID(ctx context.Context, id uint) (models.HomeworkVariant, error)
	UpdateVariant(ctx context.Context, variant *models.HomeworkVariant) error
	AssignSetToStudents(ctx context.Context, setID uint, studentIDs, taskIDs []uint) (int, error)
	ListVariantTasks(ctx context.Context, variantID, studentID uint) ([]VariantTaskRow, error)
	GetItemOwnership(ctx context.Context, itemID uint) (ItemOwnership, error)
	CountVariantItems(ctx context.Context, variantID uint) (int64, error)
}

type homeworkRepository struct {
	db *gorm.DB
}

// NewHomeworkRepository instantiates the repository.
func NewHomeworkRepository(db *gorm.DB) HomeworkRepository {
	return &homeworkRepository{db: db}
}

func (r *homeworkRepository) ListSetsByTeacher(ctx context.Context, teacherID uint) ([]SetWithCount, error) {
	var sets []SetWithCount
	err := r.db.WithContext(ctx).
		Model(&models.HomeworkSet{}).
		Select("homework_sets.*, COUNT(homework_set_tasks.task_id) AS task_count").
		Joins("LEFT JOIN homework_set_tasks ON homework_set_tasks.homework_set_id = homework_sets.id").
		Where("homework_sets.created_by = ?", teacherID).
		Group("homework_sets.id").
		Order("homework_sets.created_at DESC").
		Find(&sets).Error
	if err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *homeworkRepository) GetSetByID(ctx context.Context, id uint) (models.HomeworkSet, error) {
	var set models.HomeworkSet
	if err := r.db.WithContext(ctx).First(&set, id).Error; err != nil {
		return models.HomeworkSet{}, err
	}

	return set, nil
}

func (r *homeworkRepository) CreateSet(ctx context.Context, set *models.HomeworkSet, taskIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(set).Error; err != nil {
			return err
		}

		var tasks []models.Task
		if err := tx.Where("id IN ?", taskIDs).Find(&tasks).Error; err != nil {
			return err
		}

		return tx.Model(set).Association("Tasks").Append(&tasks)
	})
}

func (r *homeworkRepository) ListSetTaskIDs(ctx context.Context, setID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("homework_set_tasks").
		Select("task_id").
		Where("homework_set_id = ?", setID).
		Order("task_id").
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *homeworkRepository) GetVariantByID(ctx context.Context, id uint) (models.HomeworkVariant, error) {
	var variant models.HomeworkVariant
	if err := r.db.WithContext(ctx).First(&variant, id).Error; err != nil {
		return models.HomeworkVariant{}, err
	}

	return variant, nil
}

func (r *homeworkRepository) UpdateVariant(ctx context.Context, variant *models.HomeworkVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// AssignSetToStudents creates one variant plus its items for every student
// that does not already hold a variant of the set. The whole fan-out runs in
// a single transaction.
func (r *homeworkRepository) AssignSetToStudents(ctx context.Context, setID uint, studentIDs, taskIDs []uint) (int, error) {
	created := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, studentID := range studentIDs {
			var count int64
			if err := tx.Model(&models.HomeworkVariant{}).
				Where("set_id = ? AND student_id = ?", setID, studentID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			variant := models.HomeworkVariant{
				SetID:     setID,
				StudentID: studentID,
				Status:    models.VariantStatusAssigned,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}

			items := make([]models.VariantItem, 0, len(taskIDs))
			for _, taskID := range taskIDs {
				items = append(items, models.VariantItem{VariantID: variant.ID, TaskID: taskID})
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}

			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

func (r *homeworkRepository) ListVariantTasks(ctx context.Context, variantID, studentID uint) ([]VariantTaskRow, error) {
	var rows []VariantTaskRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			vi.id AS variant_item_id,
			t.id AS task_id,
			t.title,
			t.text,
			t.type,
			t.ege_number,
			t.difficulty,
			s.id AS submission_id,
			s.answer_text,
			s.answer_file_url,
			s.answer_code,
			s.answer_image_url,
			s.answer_table,
			s.score,
			s.status AS submission_status,
			s.created_at AS submitted_at
		FROM variant_items vi
		JOIN tasks t ON t.id = vi.task_id
		LEFT JOIN submissions s ON s.variant_item_id = vi.id AND s.student_id = ?
		WHERE vi.variant_id = ?
		ORDER BY vi.id`, studentID, variantID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *homeworkRepository) GetItemOwnership(ctx context.Context, itemID uint) (ItemOwnership, error) {
	var ownership ItemOwnership
	err := r.db.WithContext(ctx).
		Model(&models.VariantItem{}).
		Select("variant_items.id AS variant_item_id, variant_items.variant_id, homework_variants.student_id, homework_sets.created_by AS teacher_id").
		Joins("JOIN homework_variants ON homework_variants.id = variant_items.variant_id").
		Joins("JOIN homework_sets ON homework_sets.id = homework_variants.set_id").
		Where("variant_items.id = ?", itemID).
		Take(&ownership).Error
	if err != nil {
		return ItemOwnership{}, err
	}

	return ownership, nil
}

func (r *homeworkRepository) CountVariantItems(ctx context.Context, variantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VariantItem{}).
		Where("variant_id = ?", variantID).
		Count(&count).Error
	return count, err
}

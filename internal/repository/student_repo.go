package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StudentVariantRow is one variant of a student joined with its set fields
// and progress counters, as consumed by the dashboard and debts views.
type StudentVariantRow struct {
	VariantID    uint
	Status       string
	IsDebt       bool
	FinalScore   *float64
	CreatedAt    time.Time
	Title        string
	Description  string
	TotalTasks   int
	CheckedTasks int
	AvgScore     *float64
}

// StudentRepository supplies per-student homework summaries.
type StudentRepository interface {
	ListVariantSummaries(ctx context.Context, studentID uint) ([]StudentVariantRow, error)
	ListDebtSummaries(ctx context.Context, studentID uint) ([]StudentVariantRow, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

const studentVariantQuery = `
	SELECT
		hv.id AS variant_id,
		hv.status,
		hv.is_debt,
		hv.final_score,
		hv.created_at,
		hs.title,
		hs.description,
		COUNT(DISTINCT vi.id) AS total_tasks,
		COUNT(DISTINCT CASE WHEN s.status = 'checked' THEN s.id END) AS checked_tasks,
		AVG(CASE WHEN s.score IS NOT NULL THEN s.score END) AS avg_score
	FROM homework_variants hv
	JOIN homework_sets hs ON hs.id = hv.set_id
	LEFT JOIN variant_items vi ON vi.variant_id = hv.id
	LEFT JOIN submissions s ON s.variant_item_id = vi.id AND s.student_id = hv.student_id
	WHERE hv.student_id = ?`

const studentVariantGroupOrder = `
	GROUP BY hv.id, hv.status, hv.is_debt, hv.final_score, hv.created_at, hs.title, hs.description
	ORDER BY hv.created_at DESC`

func (r *studentRepository) ListVariantSummaries(ctx context.Context, studentID uint) ([]StudentVariantRow, error) {
	var rows []StudentVariantRow
	err := r.db.WithContext(ctx).
		Raw(studentVariantQuery+studentVariantGroupOrder, studentID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *studentRepository) ListDebtSummaries(ctx context.Context, studentID uint) ([]StudentVariantRow, error) {
	var rows []StudentVariantRow
	err := r.db.WithContext(ctx).
		Raw(studentVariantQuery+" AND hv.is_debt = ?"+studentVariantGroupOrder, studentID, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

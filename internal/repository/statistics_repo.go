package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
)

// StatisticsRepository supplies the flat per-(student × variant) rows the
// statistics endpoints are built on.
type StatisticsRepository interface {
	ListGroupStatistics(ctx context.Context, groupID uint, setID *uint) ([]dto.StudentStatRow, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

// NewStatisticsRepository instantiates the repository.
func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// ListGroupStatistics produces one row per student-variant pair. The LEFT
// JOIN keeps students without any variant in the result with null homework
// fields, which is what the aggregation layer expects.
func (r *statisticsRepository) ListGroupStatistics(ctx context.Context, groupID uint, setID *uint) ([]dto.StudentStatRow, error) {
	setFilter := ""
	args := []interface{}{}
	if setID != nil {
		setFilter = "AND hv.set_id = ?"
		args = append(args, *setID)
	}
	args = append(args, groupID)

	query := fmt.Sprintf(`
		SELECT
			u.id AS student_id,
			u.full_name,
			u.email,
			hv.id AS variant_id,
			hv.set_id AS set_id,
			hs.title AS homework_title,
			hv.status AS variant_status,
			hv.final_score,
			COUNT(DISTINCT vi.id) AS total_tasks,
			COUNT(DISTINCT s.id) AS submitted_tasks,
			COALESCE(SUM(s.score), 0) AS current_score
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		LEFT JOIN homework_variants hv ON hv.student_id = u.id %s
		LEFT JOIN homework_sets hs ON hs.id = hv.set_id
		LEFT JOIN variant_items vi ON vi.variant_id = hv.id
		LEFT JOIN submissions s ON s.variant_item_id = vi.id AND s.student_id = u.id
		WHERE e.group_id = ? AND u.role = 'student'
		GROUP BY u.id, u.full_name, u.email, hv.id, hv.set_id, hs.title, hv.status, hv.final_score
		ORDER BY u.full_name, hs.title`, setFilter)

	var rows []dto.StudentStatRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

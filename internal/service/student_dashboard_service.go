package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

// Variants whose average score falls below this mark stay in the debts
// bucket even after every task was submitted.
const debtScoreThreshold = 90

// StudentDashboardService exposes the student-facing homework views.
type StudentDashboardService interface {
	Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	Debts(ctx context.Context, studentID uint) ([]dto.DebtResponse, error)
}

type studentDashboardService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewStudentDashboardService builds a new dashboard service. The redis
// client is optional; without it every request hits the database.
func NewStudentDashboardService(students repository.StudentRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		students: students,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "student_dashboard_service").Logger(),
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *studentDashboardService) Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	if cached, ok := s.fromCache(ctx, studentID); ok {
		return cached, nil
	}

	rows, err := s.students.ListVariantSummaries(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := classifyVariants(rows)
	s.toCache(ctx, studentID, response)

	return response, nil
}

func (s *studentDashboardService) Debts(ctx context.Context, studentID uint) ([]dto.DebtResponse, error) {
	rows, err := s.students.ListDebtSummaries(ctx, studentID)
	if err != nil {
		return nil, err
	}

	debts := make([]dto.DebtResponse, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, dto.DebtResponse{
			ID:           row.VariantID,
			Title:        row.Title,
			Description:  row.Description,
			Status:       row.Status,
			FinalScore:   row.FinalScore,
			TotalTasks:   row.TotalTasks,
			CheckedTasks: row.CheckedTasks,
			CreatedAt:    row.CreatedAt,
		})
	}

	return debts, nil
}

// classifyVariants splits the student's variants into the three dashboard
// buckets. Checked homework goes to history; fully submitted work awaiting
// review, or checked work below the score threshold, counts as a debt;
// everything else is active.
func classifyVariants(rows []repository.StudentVariantRow) dto.StudentDashboardResponse {
	response := dto.StudentDashboardResponse{
		ActiveHomework: []dto.StudentHomeworkResponse{},
		Debts:          []dto.StudentHomeworkResponse{},
		History:        []dto.StudentHomeworkResponse{},
	}

	for _, row := range rows {
		item := dto.StudentHomeworkResponse{
			ID:           row.VariantID,
			Title:        row.Title,
			Description:  row.Description,
			Status:       row.Status,
			TotalTasks:   row.TotalTasks,
			CheckedTasks: row.CheckedTasks,
			AvgScore:     roundedScore(row.AvgScore),
			CreatedAt:    row.CreatedAt,
		}

		switch {
		case row.Status == models.VariantStatusCompleted:
			response.History = append(response.History, item)
		case row.Status == models.VariantStatusSubmitted,
			row.AvgScore != nil && *row.AvgScore < debtScoreThreshold && row.CheckedTasks > 0:
			response.Debts = append(response.Debts, item)
		default:
			response.ActiveHomework = append(response.ActiveHomework, item)
		}
	}

	response.Stats = dto.DashboardStats{
		TotalActive:    len(response.ActiveHomework),
		TotalDebts:     len(response.Debts),
		TotalCompleted: len(response.History),
	}

	return response
}

func roundedScore(score *float64) *int {
	if score == nil {
		return nil
	}

	rounded := int(math.Round(*score))
	return &rounded
}

func (s *studentDashboardService) fromCache(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, bool) {
	if s.cache == nil {
		return dto.StudentDashboardResponse{}, false
	}

	raw, err := s.cache.Get(ctx, dashboardCacheKey(studentID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache read failed")
		}
		return dto.StudentDashboardResponse{}, false
	}

	var response dto.StudentDashboardResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache entry corrupted")
		return dto.StudentDashboardResponse{}, false
	}

	return response, true
}

func (s *studentDashboardService) toCache(ctx context.Context, studentID uint, response dto.StudentDashboardResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache marshal failed")
		return
	}

	if err := s.cache.Set(ctx, dashboardCacheKey(studentID), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache write failed")
	}
}

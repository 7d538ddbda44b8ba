package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

// Derived homework progress statuses shown in statistics views.
const (
	DisplayStatusCompleted       = "completed"
	DisplayStatusSubmittedReview = "submitted_for_review"
	DisplayStatusInProgress      = "in_progress"
	DisplayStatusNotStarted      = "not_started"
)

// StatisticsService exposes group statistics for teachers.
type StatisticsService interface {
	GroupStatistics(ctx context.Context, teacherID, groupID uint, setID *uint) ([]dto.StudentStatRow, error)
	GroupSummary(ctx context.Context, teacherID, groupID uint, setID *uint) ([]dto.StudentStatGroup, error)
}

type statisticsService struct {
	statistics repository.StatisticsRepository
	groups     repository.GroupRepository
	logger     zerolog.Logger
}

// NewStatisticsService builds a new statistics service.
func NewStatisticsService(statistics repository.StatisticsRepository, groups repository.GroupRepository, logger zerolog.Logger) StatisticsService {
	return &statisticsService{
		statistics: statistics,
		groups:     groups,
		logger:     logger.With().Str("component", "statistics_service").Logger(),
	}
}

func (s *statisticsService) GroupStatistics(ctx context.Context, teacherID, groupID uint, setID *uint) ([]dto.StudentStatRow, error) {
	if err := s.requireOwnership(ctx, teacherID, groupID); err != nil {
		return nil, err
	}

	rows, err := s.statistics.ListGroupStatistics(ctx, groupID, setID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dto.StudentStatRow{}
	}

	return rows, nil
}

func (s *statisticsService) GroupSummary(ctx context.Context, teacherID, groupID uint, setID *uint) ([]dto.StudentStatGroup, error) {
	rows, err := s.GroupStatistics(ctx, teacherID, groupID, setID)
	if err != nil {
		return nil, err
	}

	return AggregateStatRows(rows), nil
}

func (s *statisticsService) requireOwnership(ctx context.Context, teacherID, groupID uint) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if group.TeacherID != teacherID {
		return ErrNotGroupOwner
	}

	return nil
}

// AggregateStatRows folds flat statistics rows into one group per student.
// Groups appear in the order their student first appears in the input, and
// each student's homeworks keep the relative order of their rows. Rows whose
// variant fields are null contribute only the student's identity, so a
// student with no homework still yields a group with an empty list. The
// input slice is not mutated.
func AggregateStatRows(rows []dto.StudentStatRow) []dto.StudentStatGroup {
	groups := make([]dto.StudentStatGroup, 0, len(rows))
	index := make(map[uint]int, len(rows))

	for _, row := range rows {
		at, seen := index[row.StudentID]
		if !seen {
			at = len(groups)
			index[row.StudentID] = at
			groups = append(groups, dto.StudentStatGroup{
				StudentID: row.StudentID,
				FullName:  row.FullName,
				Email:     row.Email,
				Homeworks: []dto.HomeworkStat{},
			})
		}

		if row.VariantID == nil {
			continue
		}

		stat := dto.HomeworkStat{
			VariantID:      *row.VariantID,
			FinalScore:     row.FinalScore,
			TotalTasks:     row.TotalTasks,
			SubmittedTasks: row.SubmittedTasks,
			CurrentScore:   row.CurrentScore,
		}
		if row.SetID != nil {
			stat.SetID = *row.SetID
		}
		if row.HomeworkTitle != nil {
			stat.HomeworkTitle = *row.HomeworkTitle
		}
		if row.VariantStatus != nil {
			stat.VariantStatus = *row.VariantStatus
		}
		stat.DisplayStatus = DeriveDisplayStatus(stat.VariantStatus, stat.SubmittedTasks, stat.TotalTasks)

		groups[at].Homeworks = append(groups[at].Homeworks, stat)
	}

	return groups
}

// DeriveDisplayStatus maps a variant's stored status and progress counters to
// the status shown in statistics views. A checked variant always wins; a
// fully submitted one reads as awaiting review; any submission at all means
// the student has started.
func DeriveDisplayStatus(variantStatus string, submittedTasks, totalTasks int) string {
	switch {
	case variantStatus == models.VariantStatusCompleted:
		return DisplayStatusCompleted
	case totalTasks > 0 && submittedTasks == totalTasks:
		return DisplayStatusSubmittedReview
	case submittedTasks > 0:
		return DisplayStatusInProgress
	default:
		return DisplayStatusNotStarted
	}
}

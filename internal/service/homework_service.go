package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/observability"
	"github.com/eduline/homework-api/internal/repository"
)

var (
	// ErrSetNotFound indicates the requested homework set does not exist.
	ErrSetNotFound = errors.New("homework set not found")
	// ErrNotSetOwner indicates the set belongs to another teacher.
	ErrNotSetOwner = errors.New("homework set is owned by another teacher")
	// ErrTasksNotOwned indicates some task ids are missing or foreign.
	ErrTasksNotOwned = errors.New("some tasks were not found or are owned by another teacher")
	// ErrEmptyGroup indicates a fan-out target group has no students.
	ErrEmptyGroup = errors.New("group has no students")
	// ErrVariantNotFound indicates the requested variant does not exist.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrItemNotFound indicates the requested variant item does not exist.
	ErrItemNotFound = errors.New("variant item not found")
	// ErrNotVariantOwner indicates the variant belongs to another student.
	ErrNotVariantOwner = errors.New("variant belongs to another student")
	// ErrEmptyAnswer indicates a submission carried no answer content.
	ErrEmptyAnswer = errors.New("at least one answer field is required")
	// ErrSubmissionNotFound indicates the submission to grade does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
)

// HomeworkService exposes homework set, fan-out and submission use cases.
type HomeworkService interface {
	ListSets(ctx context.Context, teacherID uint) ([]dto.HomeworkSetResponse, error)
	CreateSet(ctx context.Context, teacherID uint, payload dto.HomeworkSetCreateRequest) (dto.HomeworkSetResponse, error)
	Assign(ctx context.Context, teacherID uint, payload dto.AssignRequest) (dto.AssignResponse, error)
	VariantTasks(ctx context.Context, studentID, variantID uint) ([]dto.VariantTaskResponse, error)
	SubmitAnswer(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	GradeSubmission(ctx context.Context, teacherID, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type homeworkService struct {
	homework    repository.HomeworkRepository
	submissions repository.SubmissionRepository
	groups      repository.GroupRepository
	tasks       repository.TaskRepository
	cache       *redis.Client
	events      *EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewHomeworkService builds a new homework service.
func NewHomeworkService(
	homework repository.HomeworkRepository,
	submissions repository.SubmissionRepository,
	groups repository.GroupRepository,
	tasks repository.TaskRepository,
	cache *redis.Client,
	events *EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) HomeworkService {
	return &homeworkService{
		homework:    homework,
		submissions: submissions,
		groups:      groups,
		tasks:       tasks,
		cache:       cache,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "homework_service").Logger(),
		tracer:      otel.Tracer("github.com/eduline/homework-api/internal/service/homework"),
		now:         time.Now,
	}
}

func (s *homeworkService) ListSets(ctx context.Context, teacherID uint) ([]dto.HomeworkSetResponse, error) {
	sets, err := s.homework.ListSetsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HomeworkSetResponse, 0, len(sets))
	for _, set := range sets {
		responses = append(responses, dto.HomeworkSetResponse{
			ID:          set.ID,
			Title:       set.Title,
			Description: set.Description,
			CreatedAt:   set.CreatedAt,
			TaskCount:   set.TaskCount,
		})
	}

	return responses, nil
}

func (s *homeworkService) CreateSet(ctx context.Context, teacherID uint, payload dto.HomeworkSetCreateRequest) (dto.HomeworkSetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HomeworkSetResponse{}, err
	}

	owned, err := s.tasks.CountOwnedByIDs(ctx, teacherID, payload.TaskIDs)
	if err != nil {
		return dto.HomeworkSetResponse{}, err
	}
	if owned != int64(len(payload.TaskIDs)) {
		return dto.HomeworkSetResponse{}, ErrTasksNotOwned
	}

	set := models.HomeworkSet{
		Title:       payload.Title,
		Description: payload.Description,
		CreatedBy:   teacherID,
	}
	if err := s.homework.CreateSet(ctx, &set, payload.TaskIDs); err != nil {
		return dto.HomeworkSetResponse{}, err
	}

	s.logger.Info().Uint("set_id", set.ID).Int("tasks", len(payload.TaskIDs)).Msg("homework set created")

	return dto.HomeworkSetResponse{
		ID:          set.ID,
		Title:       set.Title,
		Description: set.Description,
		CreatedAt:   set.CreatedAt,
		TaskCount:   int64(len(payload.TaskIDs)),
	}, nil
}

// Assign fans the set out to every student of the group. Students that
// already hold a variant of the set are skipped, so re-assigning is safe.
func (s *homeworkService) Assign(ctx context.Context, teacherID uint, payload dto.AssignRequest) (dto.AssignResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "homework.assign", trace.WithAttributes(
		attribute.Int("set_id", int(payload.SetID)),
		attribute.Int("group_id", int(payload.GroupID)),
	))
	defer span.End()

	group, err := s.groups.GetByID(spanCtx, payload.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignResponse{}, ErrGroupNotFound
		}
		return dto.AssignResponse{}, err
	}
	if group.TeacherID != teacherID {
		return dto.AssignResponse{}, ErrNotGroupOwner
	}

	set, err := s.homework.GetSetByID(spanCtx, payload.SetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignResponse{}, ErrSetNotFound
		}
		return dto.AssignResponse{}, err
	}
	if set.CreatedBy != teacherID {
		return dto.AssignResponse{}, ErrNotSetOwner
	}

	studentIDs, err := s.groups.ListStudentIDs(spanCtx, payload.GroupID)
	if err != nil {
		return dto.AssignResponse{}, err
	}
	if len(studentIDs) == 0 {
		return dto.AssignResponse{}, ErrEmptyGroup
	}

	taskIDs, err := s.homework.ListSetTaskIDs(spanCtx, payload.SetID)
	if err != nil {
		return dto.AssignResponse{}, err
	}

	created, err := s.homework.AssignSetToStudents(spanCtx, payload.SetID, studentIDs, taskIDs)
	if err != nil {
		span.RecordError(err)
		return dto.AssignResponse{}, err
	}

	for _, studentID := range studentIDs {
		s.invalidateDashboard(spanCtx, studentID)
	}

	s.events.Publish(SubjectHomeworkAssigned, HomeworkAssignedEvent{
		SetID:           payload.SetID,
		GroupID:         payload.GroupID,
		VariantsCreated: created,
		AssignedAt:      s.now().UTC(),
	})
	observability.VariantsAssigned().Add(float64(created))

	s.logger.Info().
		Uint("set_id", payload.SetID).
		Uint("group_id", payload.GroupID).
		Int("variants_created", created).
		Msg("homework assigned to group")

	return dto.AssignResponse{VariantsCreated: created, TotalStudents: len(studentIDs)}, nil
}

func (s *homeworkService) VariantTasks(ctx context.Context, studentID, variantID uint) ([]dto.VariantTaskResponse, error) {
	variant, err := s.homework.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	if variant.StudentID != studentID {
		return nil, ErrNotVariantOwner
	}

	rows, err := s.homework.ListVariantTasks(ctx, variantID, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.VariantTaskResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, newVariantTaskResponse(row))
	}

	return responses, nil
}

// SubmitAnswer upserts the submission for one variant item. All answer
// fields are replaced on resubmission; the variant leaves "assigned" on the
// first answer.
func (s *homeworkService) SubmitAnswer(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	ownership, err := s.homework.GetItemOwnership(ctx, payload.VariantItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrItemNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if ownership.StudentID != studentID {
		return dto.SubmissionResponse{}, ErrNotVariantOwner
	}

	var table datatypes.JSON
	if payload.AnswerTable != "" {
		table = datatypes.JSON(payload.AnswerTable)
	}

	draft := models.Submission{
		StudentID:      studentID,
		VariantItemID:  payload.VariantItemID,
		AnswerText:     payload.AnswerText,
		AnswerFileURL:  payload.AnswerFileURL,
		AnswerCode:     payload.AnswerCode,
		AnswerImageURL: payload.AnswerImageURL,
		AnswerTable:    table,
		Status:         models.SubmissionStatusSubmitted,
	}
	if !draft.HasAnswer() {
		return dto.SubmissionResponse{}, ErrEmptyAnswer
	}

	existing, err := s.submissions.GetByItemAndStudent(ctx, payload.VariantItemID, studentID)
	switch {
	case err == nil:
		existing.AnswerText = draft.AnswerText
		existing.AnswerFileURL = draft.AnswerFileURL
		existing.AnswerCode = draft.AnswerCode
		existing.AnswerImageURL = draft.AnswerImageURL
		existing.AnswerTable = draft.AnswerTable
		existing.Score = nil
		existing.Status = models.SubmissionStatusSubmitted
		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.SubmissionResponse{}, err
		}
		draft = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.submissions.Create(ctx, &draft); err != nil {
			return dto.SubmissionResponse{}, err
		}
	default:
		return dto.SubmissionResponse{}, err
	}

	if err := s.advanceVariant(ctx, ownership.VariantID); err != nil {
		s.logger.Warn().Err(err).Uint("variant_id", ownership.VariantID).Msg("failed to advance variant status")
	}

	s.invalidateDashboard(ctx, studentID)

	s.events.Publish(SubjectSubmissionReceived, SubmissionReceivedEvent{
		VariantItemID: payload.VariantItemID,
		StudentID:     studentID,
		ReceivedAt:    s.now().UTC(),
	})
	observability.SubmissionsReceived().Inc()

	s.logger.Info().
		Uint("variant_item_id", payload.VariantItemID).
		Uint("student_id", studentID).
		Msg("answer submitted")

	return dto.NewSubmissionResponse(draft), nil
}

// GradeSubmission records the teacher's score and marks the submission
// checked. Once every item of the variant is checked the variant completes
// and its final score decides the debt flag.
func (s *homeworkService) GradeSubmission(ctx context.Context, teacherID, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	ownership, err := s.homework.GetItemOwnership(ctx, submission.VariantItemID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if ownership.TeacherID != teacherID {
		return dto.SubmissionResponse{}, ErrNotSetOwner
	}

	submission.Score = payload.Score
	submission.Status = models.SubmissionStatusChecked
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.finalizeVariant(ctx, ownership.VariantID, submission.StudentID); err != nil {
		s.logger.Warn().Err(err).Uint("variant_id", ownership.VariantID).Msg("failed to finalize variant")
	}

	s.invalidateDashboard(ctx, submission.StudentID)

	s.logger.Info().
		Uint("submission_id", submissionID).
		Float64("score", *payload.Score).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// finalizeVariant completes the variant once every item carries a checked
// submission. The final score is the average of the item scores; averages
// below the threshold flag the variant as a debt.
func (s *homeworkService) finalizeVariant(ctx context.Context, variantID, studentID uint) error {
	items, err := s.homework.CountVariantItems(ctx, variantID)
	if err != nil {
		return err
	}

	stats, err := s.submissions.CheckedStatsForVariant(ctx, variantID, studentID)
	if err != nil {
		return err
	}
	if items == 0 || stats.Checked < items {
		return nil
	}

	variant, err := s.homework.GetVariantByID(ctx, variantID)
	if err != nil {
		return err
	}

	avg := stats.AvgScore
	variant.Status = models.VariantStatusCompleted
	variant.FinalScore = &avg
	variant.IsDebt = avg < debtScoreThreshold
	return s.homework.UpdateVariant(ctx, &variant)
}

func (s *homeworkService) advanceVariant(ctx context.Context, variantID uint) error {
	variant, err := s.homework.GetVariantByID(ctx, variantID)
	if err != nil {
		return err
	}

	if variant.Status != models.VariantStatusAssigned {
		return nil
	}

	variant.Status = models.VariantStatusInProgress
	return s.homework.UpdateVariant(ctx, &variant)
}

func (s *homeworkService) invalidateDashboard(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, dashboardCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}

func newVariantTaskResponse(row repository.VariantTaskRow) dto.VariantTaskResponse {
	response := dto.VariantTaskResponse{
		VariantItemID: row.VariantItemID,
		TaskID:        row.TaskID,
		Title:         row.Title,
		Text:          row.Text,
		Type:          row.Type,
		EGENumber:     row.EGENumber,
		Difficulty:    row.Difficulty,
	}

	if row.SubmissionID != nil {
		submission := dto.SubmissionResponse{
			ID:          *row.SubmissionID,
			Score:       row.Score,
			SubmittedAt: row.SubmittedAt,
		}
		if row.AnswerText != nil {
			submission.AnswerText = *row.AnswerText
		}
		if row.AnswerFileURL != nil {
			submission.AnswerFileURL = *row.AnswerFileURL
		}
		if row.AnswerCode != nil {
			submission.AnswerCode = *row.AnswerCode
		}
		if row.AnswerImageURL != nil {
			submission.AnswerImageURL = *row.AnswerImageURL
		}
		if row.AnswerTable != nil {
			submission.AnswerTable = *row.AnswerTable
		}
		if row.SubmissionStatus != nil {
			submission.Status = *row.SubmissionStatus
		}
		response.Submission = &submission
	}

	return response
}

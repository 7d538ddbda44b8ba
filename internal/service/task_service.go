package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

// TaskService exposes task bank use cases for teachers.
type TaskService interface {
	List(ctx context.Context, teacherID uint) ([]dto.TaskResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTaskService builds a new task service. Task text may carry markup, so
// it is run through a UGC sanitization policy before it is stored.
func NewTaskService(tasks repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) List(ctx context.Context, teacherID uint) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

func (s *taskService) Create(ctx context.Context, teacherID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		Title:      strings.TrimSpace(payload.Title),
		Text:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Text)),
		Topic:      strings.TrimSpace(payload.Topic),
		Difficulty: payload.Difficulty,
		Type:       payload.Type,
		EGENumber:  payload.EGENumber,
		CreatedBy:  teacherID,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Str("type", task.Type).Msg("task created")

	return dto.NewTaskResponse(task), nil
}

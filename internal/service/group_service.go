package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotGroupOwner indicates the group belongs to another teacher.
	ErrNotGroupOwner = errors.New("group is owned by another teacher")
	// ErrStudentNotFound indicates no account exists for the given email.
	ErrStudentNotFound = errors.New("student not found")
	// ErrNotAStudent indicates the account exists but is not a student.
	ErrNotAStudent = errors.New("user is not a student")
	// ErrAlreadyEnrolled indicates the student is already on the roster.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
)

// GroupService exposes group and roster use cases for teachers.
type GroupService interface {
	List(ctx context.Context, teacherID uint) ([]dto.GroupResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Roster(ctx context.Context, teacherID, groupID uint) ([]dto.EnrollmentResponse, error)
	AddStudent(ctx context.Context, teacherID uint, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error)
}

type groupService struct {
	groups    repository.GroupRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGroupService builds a new group service.
func NewGroupService(groups repository.GroupRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		groups:    groups,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context, teacherID uint) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, dto.GroupResponse{
			ID:           group.ID,
			Title:        group.Title,
			CreatedAt:    group.CreatedAt,
			StudentCount: group.StudentCount,
		})
	}

	return responses, nil
}

func (s *groupService) Create(ctx context.Context, teacherID uint, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.Group{Title: payload.Title, TeacherID: teacherID}
	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Msg("group created")

	return dto.GroupResponse{
		ID:        group.ID,
		Title:     group.Title,
		CreatedAt: group.CreatedAt,
	}, nil
}

func (s *groupService) Roster(ctx context.Context, teacherID, groupID uint) ([]dto.EnrollmentResponse, error) {
	if err := s.requireOwnership(ctx, teacherID, groupID); err != nil {
		return nil, err
	}

	entries, err := s.groups.ListRoster(ctx, groupID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.EnrollmentResponse{
			EnrollmentID: entry.EnrollmentID,
			StudentID:    entry.StudentID,
			FullName:     entry.FullName,
			Email:        entry.Email,
			EnrolledAt:   entry.EnrolledAt,
		})
	}

	return responses, nil
}

func (s *groupService) AddStudent(ctx context.Context, teacherID uint, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if err := s.requireOwnership(ctx, teacherID, payload.GroupID); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	student, err := s.users.GetByEmail(ctx, payload.StudentEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrStudentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if student.Role != models.RoleStudent {
		return dto.EnrollmentResponse{}, ErrNotAStudent
	}

	enrolled, err := s.groups.HasEnrollment(ctx, payload.GroupID, student.ID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if enrolled {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{GroupID: payload.GroupID, StudentID: student.ID}
	if err := s.groups.CreateEnrollment(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("group_id", payload.GroupID).
		Uint("student_id", student.ID).
		Msg("student enrolled")

	return dto.EnrollmentResponse{
		EnrollmentID: enrollment.ID,
		StudentID:    student.ID,
		FullName:     student.FullName,
		Email:        student.Email,
		EnrolledAt:   enrollment.EnrolledAt,
	}, nil
}

func (s *groupService) requireOwnership(ctx context.Context, teacherID, groupID uint) error {
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

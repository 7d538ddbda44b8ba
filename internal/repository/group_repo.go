package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/models"
)

// GroupWithCount is a group row joined with its roster size.
type GroupWithCount struct {
	models.Group
	StudentCount int64
}

// RosterEntry is one enrollment joined with the student's identity.
type RosterEntry struct {
	EnrollmentID uint
	StudentID    uint
	FullName     string
	Email        string
	EnrolledAt   time.Time
}

// GroupRepository defines persistence operations for groups and enrollments.
type GroupRepository interface {
	ListByTeacher(ctx context.Context, teacherID uint) ([]GroupWithCount, error)
	GetByID(ctx context.Context, id uint) (models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	ListRoster(ctx context.Context, groupID uint) ([]RosterEntry, error)
	ListStudentIDs(ctx context.Context, groupID uint) ([]uint, error)
	HasEnrollment(ctx context.Context, groupID, studentID uint) (bool, error)
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	CountStudents(ctx context.Context, groupID uint) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]GroupWithCount, error) {
	var groups []GroupWithCount
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Select("groups.*, COUNT(enrollments.id) AS student_count").
		Joins("LEFT JOIN enrollments ON enrollments.group_id = groups.id").
		Where("groups.teacher_id = ?", teacherID).
		Group("groups.id").
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) ListRoster(ctx context.Context, groupID uint) ([]RosterEntry, error) {
	var entries []RosterEntry
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("enrollments.id AS enrollment_id, users.id AS student_id, users.full_name, users.email, enrollments.enrolled_at").
		Joins("JOIN users ON users.id = enrollments.student_id").
		Where("enrollments.group_id = ?", groupID).
		Order("enrollments.enrolled_at DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *groupRepository) ListStudentIDs(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("users.id").
		Joins("JOIN users ON users.id = enrollments.student_id").
		Where("enrollments.group_id = ? AND users.role = ?", groupID, models.RoleStudent).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *groupRepository) HasEnrollment(ctx context.Context, groupID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *groupRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *groupRepository) CountStudents(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

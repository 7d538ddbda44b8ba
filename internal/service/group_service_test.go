package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

func newGroupFixture(t *testing.T) (GroupService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGroupService(repository.NewGroupRepository(db), repository.NewUserRepository(db), validate, zerolog.Nop())

	return svc, db
}

func TestGroupCreateAndListWithStudentCount(t *testing.T) {
	svc, db := newGroupFixture(t)
	ctx := context.Background()

	teacher := models.User{FullName: "Teacher", Email: "t@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	group, err := svc.Create(ctx, teacher.ID, dto.GroupCreateRequest{Title: "11-B Informatics"})
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	student := models.User{FullName: "Student", Email: "s@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "s@example.com"})
	require.NoError(t, err)

	groups, err := svc.List(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.EqualValues(t, 1, groups[0].StudentCount)

	// Other teachers see only their own groups.
	other := models.User{FullName: "Other", Email: "o@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&other).Error)

	groups, err = svc.List(ctx, other.ID)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestAddStudentGuards(t *testing.T) {
	svc, db := newGroupFixture(t)
	ctx := context.Background()

	teacher := models.User{FullName: "Teacher", Email: "t@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	group, err := svc.Create(ctx, teacher.ID, dto.GroupCreateRequest{Title: "Group"})
	require.NoError(t, err)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "ghost@example.com"})
	require.ErrorIs(t, err, ErrStudentNotFound)

	otherTeacher := models.User{FullName: "Other", Email: "o@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&otherTeacher).Error)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "o@example.com"})
	require.ErrorIs(t, err, ErrNotAStudent)

	student := models.User{FullName: "Student", Email: "s@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "s@example.com"})
	require.NoError(t, err)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "s@example.com"})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.AddStudent(ctx, otherTeacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "s@example.com"})
	require.ErrorIs(t, err, ErrNotGroupOwner)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: 9999, StudentEmail: "s@example.com"})
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRosterRequiresOwnership(t *testing.T) {
	svc, db := newGroupFixture(t)
	ctx := context.Background()

	teacher := models.User{FullName: "Teacher", Email: "t@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	group, err := svc.Create(ctx, teacher.ID, dto.GroupCreateRequest{Title: "Group"})
	require.NoError(t, err)

	student := models.User{FullName: "Student", Email: "s@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	_, err = svc.AddStudent(ctx, teacher.ID, dto.EnrollmentCreateRequest{GroupID: group.ID, StudentEmail: "s@example.com"})
	require.NoError(t, err)

	roster, err := svc.Roster(ctx, teacher.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, "s@example.com", roster[0].Email)

	other := models.User{FullName: "Other", Email: "o@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&other).Error)

	_, err = svc.Roster(ctx, other.ID, group.ID)
	require.ErrorIs(t, err, ErrNotGroupOwner)
}

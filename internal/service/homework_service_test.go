package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Enrollment{},
		&models.Task{},
		&models.HomeworkSet{},
		&models.HomeworkVariant{},
		&models.VariantItem{},
		&models.Submission{},
		&models.Theory{},
	))

	return db
}

func newHomeworkFixture(t *testing.T) (HomeworkService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewHomeworkService(
		repository.NewHomeworkRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewGroupRepository(db),
		repository.NewTaskRepository(db),
		nil,
		NewEventPublisher(nil, zerolog.Nop()),
		validate,
		zerolog.Nop(),
	)

	return svc, db
}

func seedTeacherGroupAndSet(t *testing.T, db *gorm.DB, studentCount int) (teacher models.User, group models.Group, set models.HomeworkSet, students []models.User) {
	t.Helper()

	teacher = models.User{FullName: "Teacher", Email: "teacher@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	group = models.Group{Title: "Group A", TeacherID: teacher.ID}
	require.NoError(t, db.Create(&group).Error)

	for i := 0; i < studentCount; i++ {
		student := models.User{
			FullName:     "Student",
			Email:        "student" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
			Role:         models.RoleStudent,
		}
		require.NoError(t, db.Create(&student).Error)
		require.NoError(t, db.Create(&models.Enrollment{GroupID: group.ID, StudentID: student.ID}).Error)
		students = append(students, student)
	}

	tasks := []models.Task{
		{Title: "Task 1", Text: "solve", Difficulty: 3, Type: models.TaskTypeText, CreatedBy: teacher.ID},
		{Title: "Task 2", Text: "draw", Difficulty: 5, Type: models.TaskTypePaint, CreatedBy: teacher.ID},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	set = models.HomeworkSet{Title: "Homework 1", CreatedBy: teacher.ID}
	require.NoError(t, db.Create(&set).Error)
	require.NoError(t, db.Model(&set).Association("Tasks").Append(&tasks))

	return teacher, group, set, students
}

func TestAssignFansOutOneVariantPerStudent(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 2)

	ctx := context.Background()
	result, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)
	require.Equal(t, 2, result.VariantsCreated)
	require.Equal(t, 2, result.TotalStudents)

	var variants []models.HomeworkVariant
	require.NoError(t, db.Order("student_id").Find(&variants).Error)
	require.Len(t, variants, 2)
	for i, variant := range variants {
		require.Equal(t, set.ID, variant.SetID)
		require.Equal(t, students[i].ID, variant.StudentID)
		require.Equal(t, models.VariantStatusAssigned, variant.Status)

		var itemCount int64
		require.NoError(t, db.Model(&models.VariantItem{}).Where("variant_id = ?", variant.ID).Count(&itemCount).Error)
		require.EqualValues(t, 2, itemCount)
	}
}

func TestAssignSkipsStudentsWithExistingVariant(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, _ := seedTeacherGroupAndSet(t, db, 2)

	ctx := context.Background()
	first, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)
	require.Equal(t, 2, first.VariantsCreated)

	second, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)
	require.Equal(t, 0, second.VariantsCreated)
	require.Equal(t, 2, second.TotalStudents)

	// A student joining after the first fan-out picks the set up on re-assign.
	late := models.User{FullName: "Late", Email: "late@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&late).Error)
	require.NoError(t, db.Create(&models.Enrollment{GroupID: group.ID, StudentID: late.ID}).Error)

	third, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)
	require.Equal(t, 1, third.VariantsCreated)
	require.Equal(t, 3, third.TotalStudents)
}

func TestAssignRejectsEmptyGroup(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, _ := seedTeacherGroupAndSet(t, db, 0)

	_, err := svc.Assign(context.Background(), teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.ErrorIs(t, err, ErrEmptyGroup)
}

func TestAssignRejectsForeignGroupAndSet(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, _ := seedTeacherGroupAndSet(t, db, 1)

	other := models.User{FullName: "Other", Email: "other@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&other).Error)

	_, err := svc.Assign(context.Background(), other.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.ErrorIs(t, err, ErrNotGroupOwner)

	foreignSet := models.HomeworkSet{Title: "Foreign", CreatedBy: other.ID}
	require.NoError(t, db.Create(&foreignSet).Error)

	_, err = svc.Assign(context.Background(), teacher.ID, dto.AssignRequest{SetID: foreignSet.ID, GroupID: group.ID})
	require.ErrorIs(t, err, ErrNotSetOwner)
}

func TestSubmitAnswerCreatesAndAdvancesVariant(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	var item models.VariantItem
	require.NoError(t, db.First(&item).Error)

	submission, err := svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{
		VariantItemID: item.ID,
		AnswerText:    "42",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.Equal(t, "42", submission.AnswerText)

	var variant models.HomeworkVariant
	require.NoError(t, db.First(&variant, item.VariantID).Error)
	require.Equal(t, models.VariantStatusInProgress, variant.Status)
}

func TestSubmitAnswerReplacesExistingSubmission(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	var item models.VariantItem
	require.NoError(t, db.First(&item).Error)

	first, err := svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{
		VariantItemID: item.ID,
		AnswerText:    "draft",
	})
	require.NoError(t, err)

	// Grading then resubmitting wipes the score and resets the status.
	score := 75.0
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", first.ID).
		Updates(map[string]interface{}{"score": score, "status": models.SubmissionStatusChecked}).Error)

	second, err := svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{
		VariantItemID: item.ID,
		AnswerText:    "final",
		AnswerTable:   `{"cells":[[1,2],[3,4]]}`,
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "final", second.AnswerText)
	require.Nil(t, second.Score)
	require.Equal(t, models.SubmissionStatusSubmitted, second.Status)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitAnswerRejectsEmptyAndForeign(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	var item models.VariantItem
	require.NoError(t, db.First(&item).Error)

	_, err = svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{VariantItemID: item.ID})
	require.ErrorIs(t, err, ErrEmptyAnswer)

	stranger := models.User{FullName: "Stranger", Email: "stranger@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&stranger).Error)

	_, err = svc.SubmitAnswer(ctx, stranger.ID, dto.SubmissionCreateRequest{VariantItemID: item.ID, AnswerText: "hi"})
	require.ErrorIs(t, err, ErrNotVariantOwner)

	_, err = svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{VariantItemID: 9999, AnswerText: "hi"})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestVariantTasksEmbedsSubmissionAndGuardsOwnership(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	var variant models.HomeworkVariant
	require.NoError(t, db.First(&variant).Error)

	tasks, err := svc.VariantTasks(ctx, students[0].ID, variant.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Nil(t, tasks[0].Submission)

	_, err = svc.SubmitAnswer(ctx, students[0].ID, dto.SubmissionCreateRequest{
		VariantItemID: tasks[0].VariantItemID,
		AnswerText:    "answer",
	})
	require.NoError(t, err)

	tasks, err = svc.VariantTasks(ctx, students[0].ID, variant.ID)
	require.NoError(t, err)
	require.NotNil(t, tasks[0].Submission)
	require.Equal(t, "answer", tasks[0].Submission.AnswerText)
	require.Nil(t, tasks[1].Submission)

	stranger := models.User{FullName: "Stranger2", Email: "stranger2@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&stranger).Error)

	_, err = svc.VariantTasks(ctx, stranger.ID, variant.ID)
	require.ErrorIs(t, err, ErrNotVariantOwner)

	_, err = svc.VariantTasks(ctx, students[0].ID, 9999)
	require.ErrorIs(t, err, ErrVariantNotFound)
}

func submitBothItems(t *testing.T, svc HomeworkService, db *gorm.DB, studentID uint) []models.VariantItem {
	t.Helper()

	var items []models.VariantItem
	require.NoError(t, db.Order("id").Find(&items).Error)
	require.Len(t, items, 2)

	for _, item := range items {
		_, err := svc.SubmitAnswer(context.Background(), studentID, dto.SubmissionCreateRequest{
			VariantItemID: item.ID,
			AnswerText:    "answer",
		})
		require.NoError(t, err)
	}

	return items
}

func gradeItem(t *testing.T, svc HomeworkService, db *gorm.DB, teacherID, itemID uint, score float64) {
	t.Helper()

	var submission models.Submission
	require.NoError(t, db.Where("variant_item_id = ?", itemID).First(&submission).Error)

	_, err := svc.GradeSubmission(context.Background(), teacherID, submission.ID, dto.GradeRequest{Score: &score})
	require.NoError(t, err)
}

func TestGradeSubmissionCompletesVariantAndFlagsDebt(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	items := submitBothItems(t, svc, db, students[0].ID)

	// One graded item out of two leaves the variant open.
	gradeItem(t, svc, db, teacher.ID, items[0].ID, 80)

	var variant models.HomeworkVariant
	require.NoError(t, db.First(&variant, items[0].VariantID).Error)
	require.Equal(t, models.VariantStatusInProgress, variant.Status)
	require.Nil(t, variant.FinalScore)

	var graded models.Submission
	require.NoError(t, db.Where("variant_item_id = ?", items[0].ID).First(&graded).Error)
	require.Equal(t, models.SubmissionStatusChecked, graded.Status)
	require.NotNil(t, graded.Score)
	require.Equal(t, 80.0, *graded.Score)

	// Grading the last item completes the variant; an average below the
	// threshold flags it as a debt.
	gradeItem(t, svc, db, teacher.ID, items[1].ID, 90)

	require.NoError(t, db.First(&variant, items[0].VariantID).Error)
	require.Equal(t, models.VariantStatusCompleted, variant.Status)
	require.NotNil(t, variant.FinalScore)
	require.Equal(t, 85.0, *variant.FinalScore)
	require.True(t, variant.IsDebt)
}

func TestGradeSubmissionHighScoresClearDebtFlag(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	items := submitBothItems(t, svc, db, students[0].ID)
	gradeItem(t, svc, db, teacher.ID, items[0].ID, 95)
	gradeItem(t, svc, db, teacher.ID, items[1].ID, 100)

	var variant models.HomeworkVariant
	require.NoError(t, db.First(&variant, items[0].VariantID).Error)
	require.Equal(t, models.VariantStatusCompleted, variant.Status)
	require.NotNil(t, variant.FinalScore)
	require.Equal(t, 97.5, *variant.FinalScore)
	require.False(t, variant.IsDebt)
}

func TestGradeSubmissionGuards(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, group, set, students := seedTeacherGroupAndSet(t, db, 1)

	ctx := context.Background()
	_, err := svc.Assign(ctx, teacher.ID, dto.AssignRequest{SetID: set.ID, GroupID: group.ID})
	require.NoError(t, err)

	items := submitBothItems(t, svc, db, students[0].ID)

	var submission models.Submission
	require.NoError(t, db.Where("variant_item_id = ?", items[0].ID).First(&submission).Error)

	score := 50.0
	_, err = svc.GradeSubmission(ctx, teacher.ID, 9999, dto.GradeRequest{Score: &score})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	other := models.User{FullName: "Other", Email: "other-grader@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&other).Error)

	_, err = svc.GradeSubmission(ctx, other.ID, submission.ID, dto.GradeRequest{Score: &score})
	require.ErrorIs(t, err, ErrNotSetOwner)

	_, err = svc.GradeSubmission(ctx, teacher.ID, submission.ID, dto.GradeRequest{})
	require.Error(t, err)
}

func TestCreateSetRejectsForeignTasks(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, _, _, _ := seedTeacherGroupAndSet(t, db, 0)

	other := models.User{FullName: "Other", Email: "other2@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&other).Error)

	foreign := models.Task{Title: "Foreign", Text: "x", Difficulty: 1, Type: models.TaskTypeText, CreatedBy: other.ID}
	require.NoError(t, db.Create(&foreign).Error)

	_, err := svc.CreateSet(context.Background(), teacher.ID, dto.HomeworkSetCreateRequest{
		Title:   "Mixed",
		TaskIDs: []uint{foreign.ID},
	})
	require.ErrorIs(t, err, ErrTasksNotOwned)
}

func TestCreateSetLinksTasks(t *testing.T) {
	svc, db := newHomeworkFixture(t)
	teacher, _, _, _ := seedTeacherGroupAndSet(t, db, 0)

	var tasks []models.Task
	require.NoError(t, db.Where("created_by = ?", teacher.ID).Find(&tasks).Error)
	require.Len(t, tasks, 2)

	set, err := svc.CreateSet(context.Background(), teacher.ID, dto.HomeworkSetCreateRequest{
		Title:   "New set",
		TaskIDs: []uint{tasks[0].ID, tasks[1].ID},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, set.TaskCount)

	sets, err := svc.ListSets(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
}

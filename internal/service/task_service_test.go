package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

func newTaskFixture(t *testing.T) TaskService {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewTaskService(repository.NewTaskRepository(db), validate, zerolog.Nop())
}

func TestTaskCreateSanitizesText(t *testing.T) {
	svc := newTaskFixture(t)

	ege := 5
	task, err := svc.Create(context.Background(), 1, dto.TaskCreateRequest{
		Title:      "Loops",
		Text:       `<p>Count to ten</p><script>alert("x")</script>`,
		Topic:      "basics",
		Difficulty: 4,
		Type:       models.TaskTypeCode,
		EGENumber:  &ege,
	})
	require.NoError(t, err)
	require.Equal(t, "<p>Count to ten</p>", task.Text)
	require.Equal(t, models.TaskTypeCode, task.Type)
	require.NotNil(t, task.EGENumber)
	require.Equal(t, 5, *task.EGENumber)
}

func TestTaskCreateValidatesPayload(t *testing.T) {
	svc := newTaskFixture(t)

	_, err := svc.Create(context.Background(), 1, dto.TaskCreateRequest{
		Title:      "Bad",
		Text:       "x",
		Difficulty: 42,
		Type:       "video",
	})
	require.Error(t, err)
	require.True(t, isValidationErr(err))
}

func TestTaskListScopedToOwner(t *testing.T) {
	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewTaskService(repository.NewTaskRepository(db), validate, zerolog.Nop())

	ctx := context.Background()
	_, err := svc.Create(ctx, 1, dto.TaskCreateRequest{Title: "Mine", Text: "x", Difficulty: 1, Type: models.TaskTypeText})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, dto.TaskCreateRequest{Title: "Theirs", Text: "x", Difficulty: 1, Type: models.TaskTypeText})
	require.NoError(t, err)

	mine, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Mine", mine[0].Title)
}

package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/handler"
	"github.com/eduline/homework-api/internal/service"
)

type stubStatisticsService struct {
	rows   []dto.StudentStatRow
	groups []dto.StudentStatGroup
}

func (s stubStatisticsService) GroupStatistics(context.Context, uint, uint, *uint) ([]dto.StudentStatRow, error) {
	return s.rows, nil
}

func (s stubStatisticsService) GroupSummary(context.Context, uint, uint, *uint) ([]dto.StudentStatGroup, error) {
	return s.groups, nil
}

func TestStatisticsSummaryContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "statistics.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	score := 85.0
	rows := []dto.StudentStatRow{
		statRow(1, "Anna Petrova", "anna@example.com", 10, 100, "Algebra", "in_progress", 3, 1, 30),
		statRow(1, "Anna Petrova", "anna@example.com", 11, 101, "Geometry", "completed", 2, 2, 180),
		statRow(2, "Boris Ivanov", "boris@example.com", 12, 100, "Algebra", "assigned", 3, 0, 0),
	}
	rows[1].FinalScore = &score

	svc := stubStatisticsService{
		rows:   rows,
		groups: service.AggregateStatRows(rows),
	}

	app := fiber.New()
	group := app.Group("/api/v1/statistics", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(99))
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	handler.NewStatisticsHandler(svc, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics/summary?group_id=1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func statRow(studentID uint, name, email string, variantID, setID uint, title, status string, total, submitted int, score float64) dto.StudentStatRow {
	return dto.StudentStatRow{
		StudentID:      studentID,
		FullName:       name,
		Email:          email,
		VariantID:      &variantID,
		SetID:          &setID,
		HomeworkTitle:  &title,
		VariantStatus:  &status,
		TotalTasks:     total,
		SubmittedTasks: submitted,
		CurrentScore:   score,
	}
}

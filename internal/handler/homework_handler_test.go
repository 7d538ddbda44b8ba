package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/service"
)

type stubHomeworkService struct {
	sets       []dto.HomeworkSetResponse
	set        dto.HomeworkSetResponse
	assign     dto.AssignResponse
	tasks      []dto.VariantTaskResponse
	submission dto.SubmissionResponse
	err        error
}

func (s stubHomeworkService) ListSets(context.Context, uint) ([]dto.HomeworkSetResponse, error) {
	return s.sets, s.err
}

func (s stubHomeworkService) CreateSet(context.Context, uint, dto.HomeworkSetCreateRequest) (dto.HomeworkSetResponse, error) {
	return s.set, s.err
}

func (s stubHomeworkService) Assign(context.Context, uint, dto.AssignRequest) (dto.AssignResponse, error) {
	return s.assign, s.err
}

func (s stubHomeworkService) VariantTasks(context.Context, uint, uint) ([]dto.VariantTaskResponse, error) {
	return s.tasks, s.err
}

func (s stubHomeworkService) SubmitAnswer(context.Context, uint, dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	return s.submission, s.err
}

func (s stubHomeworkService) GradeSubmission(context.Context, uint, uint, dto.GradeRequest) (dto.SubmissionResponse, error) {
	return s.submission, s.err
}

func newHomeworkApp(svc stubHomeworkService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/homework", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	h := NewHomeworkHandler(svc, zerolog.Nop())
	h.RegisterTeacher(group)
	h.RegisterStudent(group)
	return app
}

func TestAssignSuccess(t *testing.T) {
	app := newHomeworkApp(stubHomeworkService{assign: dto.AssignResponse{VariantsCreated: 5, TotalStudents: 5}})

	payload, err := json.Marshal(dto.AssignRequest{SetID: 1, GroupID: 2})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/homework/assign", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 5, body["variants_created"])
	require.EqualValues(t, 5, body["total_students"])
}

func TestListSetsEnvelopeKey(t *testing.T) {
	app := newHomeworkApp(stubHomeworkService{sets: []dto.HomeworkSetResponse{{ID: 1, Title: "Week 1"}}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/homework/sets", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])

	sets, ok := body["homework_sets"].([]interface{})
	require.True(t, ok)
	require.Len(t, sets, 1)
}

func TestHomeworkErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty group", service.ErrEmptyGroup, http.StatusBadRequest},
		{"group not found", service.ErrGroupNotFound, http.StatusNotFound},
		{"foreign group", service.ErrNotGroupOwner, http.StatusForbidden},
		{"set not found", service.ErrSetNotFound, http.StatusNotFound},
		{"foreign set", service.ErrNotSetOwner, http.StatusForbidden},
	}

	payload, err := json.Marshal(dto.AssignRequest{SetID: 1, GroupID: 2})
	require.NoError(t, err)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newHomeworkApp(stubHomeworkService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/homework/assign", bytes.NewReader(payload))
			req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			body := decodeBody(t, resp)
			require.Equal(t, false, body["success"])
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestVariantTasksRequiresQueryParam(t *testing.T) {
	app := newHomeworkApp(stubHomeworkService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/homework/tasks", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGradeSubmissionRoute(t *testing.T) {
	score := 85.0
	app := newHomeworkApp(stubHomeworkService{submission: dto.SubmissionResponse{ID: 7, Score: &score, Status: "checked"}})

	payload, err := json.Marshal(dto.GradeRequest{Score: &score})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/homework/submissions/7/grade", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])

	submission, ok := body["submission"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "checked", submission["status"])
}

func TestGradeSubmissionNotFound(t *testing.T) {
	score := 85.0
	app := newHomeworkApp(stubHomeworkService{err: service.ErrSubmissionNotFound})

	payload, err := json.Marshal(dto.GradeRequest{Score: &score})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/homework/submissions/9/grade", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmissionErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty answer", service.ErrEmptyAnswer, http.StatusBadRequest},
		{"foreign variant", service.ErrNotVariantOwner, http.StatusForbidden},
		{"missing item", service.ErrItemNotFound, http.StatusNotFound},
	}

	payload, err := json.Marshal(dto.SubmissionCreateRequest{VariantItemID: 1, AnswerText: "x"})
	require.NoError(t, err)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newHomeworkApp(stubHomeworkService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/homework/submissions", bytes.NewReader(payload))
			req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

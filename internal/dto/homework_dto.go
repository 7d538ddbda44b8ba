package dto

import (
	"time"

	"github.com/eduline/homework-api/internal/models"
)

// HomeworkSetCreateRequest assembles a set from bank task ids.
type HomeworkSetCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2"`
	Description string `json:"description"`
	TaskIDs     []uint `json:"task_ids" validate:"required,min=1,dive,gt=0"`
}

// HomeworkSetResponse is the serialized homework set with its task count.
type HomeworkSetResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	TaskCount   int64     `json:"task_count"`
}

// AssignRequest fans a homework set out to every student of a group.
type AssignRequest struct {
	SetID   uint `json:"set_id" validate:"required"`
	GroupID uint `json:"group_id" validate:"required"`
}

// AssignResponse reports the outcome of a fan-out.
type AssignResponse struct {
	VariantsCreated int `json:"variants_created"`
	TotalStudents   int `json:"total_students"`
}

// SubmissionCreateRequest submits an answer for one variant item. At least
// one answer field must be present; the service enforces it.
type SubmissionCreateRequest struct {
	VariantItemID  uint   `json:"variant_item_id" validate:"required"`
	AnswerText     string `json:"answer_text"`
	AnswerFileURL  string `json:"answer_file_url" validate:"omitempty,url"`
	AnswerCode     string `json:"answer_code"`
	AnswerImageURL string `json:"answer_image_url" validate:"omitempty,url"`
	AnswerTable    string `json:"answer_table_json" validate:"omitempty,json"`
}

// GradeRequest records the teacher's score for one submission.
type GradeRequest struct {
	Score *float64 `json:"score" validate:"required,min=0,max=100"`
}

// SubmissionResponse is the embedded submission of a variant task.
type SubmissionResponse struct {
	ID             uint       `json:"id"`
	AnswerText     string     `json:"answer_text"`
	AnswerFileURL  string     `json:"answer_file_url"`
	AnswerCode     string     `json:"answer_code"`
	AnswerImageURL string     `json:"answer_image_url"`
	AnswerTable    string     `json:"answer_table_json"`
	Score          *float64   `json:"score"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	submittedAt := submission.CreatedAt
	return SubmissionResponse{
		ID:             submission.ID,
		AnswerText:     submission.AnswerText,
		AnswerFileURL:  submission.AnswerFileURL,
		AnswerCode:     submission.AnswerCode,
		AnswerImageURL: submission.AnswerImageURL,
		AnswerTable:    string(submission.AnswerTable),
		Score:          submission.Score,
		Status:         submission.Status,
		SubmittedAt:    &submittedAt,
	}
}

// VariantTaskResponse is one task of a homework variant with the task fields
// denormalized and the student's submission embedded when present.
type VariantTaskResponse struct {
	VariantItemID uint                `json:"variant_item_id"`
	TaskID        uint                `json:"task_id"`
	Title         string              `json:"title"`
	Text          string              `json:"text"`
	Type          string              `json:"type"`
	EGENumber     *int                `json:"ege_number"`
	Difficulty    int                 `json:"difficulty"`
	Submission    *SubmissionResponse `json:"submission"`
}

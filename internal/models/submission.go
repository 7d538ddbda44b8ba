package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission status values. A resubmission always resets the status to
// "submitted"; "checked" is set by the teacher together with a score.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusChecked   = "checked"
)

// Submission is a student's answer to one variant item. Exactly one
// submission exists per (variant item, student) pair; resubmitting replaces
// every answer field.
type Submission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StudentID      uint           `gorm:"not null;uniqueIndex:idx_item_student" json:"student_id"`
	VariantItemID  uint           `gorm:"not null;uniqueIndex:idx_item_student" json:"variant_item_id"`
	AnswerText     string         `gorm:"type:text" json:"answer_text"`
	AnswerFileURL  string         `gorm:"size:512" json:"answer_file_url"`
	AnswerCode     string         `gorm:"type:text" json:"answer_code"`
	AnswerImageURL string         `gorm:"size:512" json:"answer_image_url"`
	AnswerTable    datatypes.JSON `json:"answer_table_json"`
	Score          *float64       `json:"score"`
	Status         string         `gorm:"size:32;not null" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	VariantItem    VariantItem    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasAnswer reports whether at least one answer field carries content.
func (s Submission) HasAnswer() bool {
	return s.AnswerText != "" || s.AnswerFileURL != "" || s.AnswerCode != "" ||
		s.AnswerImageURL != "" || len(s.AnswerTable) > 0
}

// IsChecked reports whether the submission has been graded.
func (s Submission) IsChecked() bool {
	return s.Status == SubmissionStatusChecked
}

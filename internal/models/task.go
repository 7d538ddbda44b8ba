package models

import "time"

// Task answer modality. The set is closed; the type drives which answer
// field a submission is expected to carry.
const (
	TaskTypeText  = "text"
	TaskTypeFile  = "file"
	TaskTypeCode  = "code"
	TaskTypePaint = "paint"
	TaskTypeTable = "table"
)

// Task is a bank exercise owned by a teacher. Tasks are immutable once
// created; homework sets reference them by id.
type Task struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Topic      string    `gorm:"size:255" json:"topic"`
	Difficulty int       `gorm:"not null" json:"difficulty"`
	Type       string    `gorm:"size:16;not null" json:"type"`
	EGENumber  *int      `json:"ege_number"`
	CreatedBy  uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsValidTaskType reports whether the supplied type belongs to the closed set.
func IsValidTaskType(taskType string) bool {
	switch taskType {
	case TaskTypeText, TaskTypeFile, TaskTypeCode, TaskTypePaint, TaskTypeTable:
		return true
	default:
		return false
	}
}

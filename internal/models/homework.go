package models

import "time"

// HomeworkSet is a named selection of bank tasks assembled by a teacher.
// Assigning a set to a group fans out into one HomeworkVariant per student.
type HomeworkSet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tasks       []Task    `gorm:"many2many:homework_set_tasks" json:"-"`
}

// Lifecycle of a homework variant. "in_progress" is entered on the first
// submission, "submitted" when the student hands the whole variant in, and
// "completed" once the teacher has checked it.
const (
	VariantStatusAssigned   = "assigned"
	VariantStatusInProgress = "in_progress"
	VariantStatusSubmitted  = "submitted"
	VariantStatusCompleted  = "completed"
)

// HomeworkVariant is a per-student instantiation of a homework set.
type HomeworkVariant struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	SetID      uint        `gorm:"not null;index:idx_variant_set_student" json:"set_id"`
	StudentID  uint        `gorm:"not null;index:idx_variant_set_student" json:"student_id"`
	Status     string      `gorm:"size:32;not null" json:"status"`
	FinalScore *float64    `json:"final_score"`
	IsDebt     bool        `gorm:"not null;default:false" json:"is_debt"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Set        HomeworkSet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsCompleted reports whether the variant has been checked by the teacher.
func (v HomeworkVariant) IsCompleted() bool {
	return v.Status == VariantStatusCompleted
}

// VariantItem is one task instance inside a variant.
type VariantItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	VariantID uint            `gorm:"not null;index" json:"variant_id"`
	TaskID    uint            `gorm:"not null" json:"task_id"`
	Variant   HomeworkVariant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Task      Task            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

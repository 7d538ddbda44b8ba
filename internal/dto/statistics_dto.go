package dto

// StudentStatRow is one flat statistics record: a student crossed with zero
// or one homework variant. Students without any variant produce a single row
// whose homework fields are all null.
type StudentStatRow struct {
	StudentID      uint     `json:"student_id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	VariantID      *uint    `json:"variant_id"`
	SetID          *uint    `json:"set_id"`
	HomeworkTitle  *string  `json:"homework_title"`
	VariantStatus  *string  `json:"variant_status"`
	FinalScore     *float64 `json:"final_score"`
	TotalTasks     int      `json:"total_tasks"`
	SubmittedTasks int      `json:"submitted_tasks"`
	CurrentScore   float64  `json:"current_score"`
}

// HomeworkStat is one homework outcome inside a grouped statistics record.
// DisplayStatus is derived, never stored.
type HomeworkStat struct {
	VariantID      uint     `json:"variant_id"`
	SetID          uint     `json:"set_id"`
	HomeworkTitle  string   `json:"homework_title"`
	VariantStatus  string   `json:"variant_status"`
	DisplayStatus  string   `json:"display_status"`
	FinalScore     *float64 `json:"final_score"`
	TotalTasks     int      `json:"total_tasks"`
	SubmittedTasks int      `json:"submitted_tasks"`
	CurrentScore   float64  `json:"current_score"`
}

// StudentStatGroup is the per-student view: identity fields plus the ordered
// list of homework outcomes.
type StudentStatGroup struct {
	StudentID uint           `json:"student_id"`
	FullName  string         `json:"full_name"`
	Email     string         `json:"email"`
	Homeworks []HomeworkStat `json:"homeworks"`
}

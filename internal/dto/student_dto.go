package dto

import "time"

// StudentHomeworkResponse is one homework variant as shown on the student
// dashboard: denormalized set fields plus progress counters.
type StudentHomeworkResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	TotalTasks   int       `json:"total_tasks"`
	CheckedTasks int       `json:"checked_tasks"`
	AvgScore     *int      `json:"avg_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardStats summarizes the three dashboard buckets.
type DashboardStats struct {
	TotalActive    int `json:"total_active"`
	TotalDebts     int `json:"total_debts"`
	TotalCompleted int `json:"total_completed"`
}

// StudentDashboardResponse splits the student's variants into active work,
// debts and checked history.
type StudentDashboardResponse struct {
	ActiveHomework []StudentHomeworkResponse `json:"active_homework"`
	Debts          []StudentHomeworkResponse `json:"debts"`
	History        []StudentHomeworkResponse `json:"history"`
	Stats          DashboardStats            `json:"stats"`
}

// DebtResponse is one overdue homework from the student's debts list.
type DebtResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	FinalScore   *float64  `json:"final_score"`
	TotalTasks   int       `json:"total_tasks"`
	CheckedTasks int       `json:"checked_tasks"`
	CreatedAt    time.Time `json:"created_at"`
}

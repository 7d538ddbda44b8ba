package dto

import "time"

// GroupCreateRequest describes the payload for creating a group.
type GroupCreateRequest struct {
	Title string `json:"title" validate:"required,min=2"`
}

// GroupResponse is a group together with its denormalized roster size.
type GroupResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	StudentCount int64     `json:"student_count"`
}

// EnrollmentCreateRequest adds a student to a group by email.
type EnrollmentCreateRequest struct {
	GroupID      uint   `json:"group_id" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
}

// EnrollmentResponse is one roster entry of a group.
type EnrollmentResponse struct {
	EnrollmentID uint      `json:"enrollment_id"`
	StudentID    uint      `json:"student_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

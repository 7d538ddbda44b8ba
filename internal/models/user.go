package models

import "time"

// Roles a user account can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User is a registered account, either a teacher or a student.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTeacher reports whether the account holds the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsValidRole reports whether the supplied role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleTeacher
}

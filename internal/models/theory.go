package models

import "time"

// Theory is a study material published by a teacher, tagged with an EGE
// exam section number and optionally carrying an attached file.
type Theory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	EGENumber int       `gorm:"not null" json:"ege_number"`
	FileURL   string    `gorm:"size:512" json:"file_url"`
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

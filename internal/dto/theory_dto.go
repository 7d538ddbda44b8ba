package dto

import (
	"time"

	"github.com/eduline/homework-api/internal/models"
)

// TheoryCreateRequest describes the payload for publishing a theory material.
// FileURL may come either from the payload or from an uploaded file; the
// upload wins when both are present.
type TheoryCreateRequest struct {
	Title     string `json:"title" form:"title" validate:"required,min=2"`
	Content   string `json:"content" form:"content" validate:"required"`
	EGENumber int    `json:"ege_number" form:"ege_number" validate:"required,min=1,max=27"`
	FileURL   string `json:"file_url" form:"file_url" validate:"omitempty,url"`
}

// TheoryResponse is the serialized theory material.
type TheoryResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	EGENumber int       `json:"ege_number"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTheoryResponse converts a model into a DTO.
func NewTheoryResponse(theory models.Theory) TheoryResponse {
	return TheoryResponse{
		ID:        theory.ID,
		Title:     theory.Title,
		Content:   theory.Content,
		EGENumber: theory.EGENumber,
		FileURL:   theory.FileURL,
		CreatedAt: theory.CreatedAt,
	}
}

// NewTheoryResponseSlice converts a slice of models into DTOs.
func NewTheoryResponseSlice(items []models.Theory) []TheoryResponse {
	responses := make([]TheoryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewTheoryResponse(item))
	}

	return responses
}

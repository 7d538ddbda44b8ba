package dto

import (
	"time"

	"github.com/eduline/homework-api/internal/models"
)

// TaskCreateRequest describes the payload for adding a task to the bank.
type TaskCreateRequest struct {
	Title      string `json:"title" validate:"required,min=2"`
	Text       string `json:"text" validate:"required"`
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty" validate:"required,min=1,max=10"`
	Type       string `json:"type" validate:"required,oneof=text file code paint table"`
	EGENumber  *int   `json:"ege_number" validate:"omitempty,min=1,max=27"`
}

// TaskResponse is the serialized bank task returned to API clients.
type TaskResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Topic      string    `json:"topic"`
	Difficulty int       `json:"difficulty"`
	Type       string    `json:"type"`
	EGENumber  *int      `json:"ege_number"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewTaskResponse converts a model into a DTO.
func NewTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:         task.ID,
		Title:      task.Title,
		Text:       task.Text,
		Topic:      task.Topic,
		Difficulty: task.Difficulty,
		Type:       task.Type,
		EGENumber:  task.EGENumber,
		CreatedAt:  task.CreatedAt,
	}
}

// NewTaskResponseSlice converts a slice of models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	return responses
}

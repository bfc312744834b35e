package models

import (
	"time"
)

// Todo is a single task in the display-ordered list
type Todo struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Order     int       `gorm:"column:position;not null;default:0;index" json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName binds Todo to the todos table
func (Todo) TableName() string {
	return "todos"
}

// CreateTodoRequest represents the request to create a new todo
type CreateTodoRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// UpdateTodoRequest represents the request to change a todo's completion state
type UpdateTodoRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// ReorderTodosRequest carries the caller's desired display sequence.
// Position i in TodoIDs becomes order i.
type ReorderTodosRequest struct {
	TodoIDs []uint `json:"todo_ids" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse is a status-only acknowledgment
type MessageResponse struct {
	Message string `json:"message"`
	Skipped []uint `json:"skipped,omitempty"`
}

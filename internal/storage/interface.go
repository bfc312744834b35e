package storage

import (
	"context"
	"errors"

	"futuristic-todo-api/internal/models"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
)

// OrderUpdate assigns a new order value to one todo
type OrderUpdate struct {
	ID    uint
	Order int
}

// Store defines the persistence primitives for todos.
// Implementations hold no ordering policy; callers decide order values.
type Store interface {
	// FindAll returns every todo sorted by order ascending, then id ascending
	FindAll(ctx context.Context) ([]models.Todo, error)
	FindByID(ctx context.Context, id uint) (*models.Todo, error)
	// MaxOrder returns the largest order in use, or 0 when the store is empty
	MaxOrder(ctx context.Context) (int, error)
	// Insert persists a new todo and assigns its ID
	Insert(ctx context.Context, todo *models.Todo) error
	DeleteByID(ctx context.Context, id uint) error
	UpdateCompleted(ctx context.Context, id uint, completed bool) (*models.Todo, error)
	// UpdateOrders applies all updates atomically. IDs that do not exist are
	// left out of the returned applied slice; they are not an error.
	UpdateOrders(ctx context.Context, updates []OrderUpdate) (applied []uint, err error)
}

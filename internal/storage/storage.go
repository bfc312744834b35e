package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"futuristic-todo-api/internal/models"
)

// MemoryStore provides in-memory storage for todos
type MemoryStore struct {
	mu     sync.RWMutex
	todos  map[uint]*models.Todo
	nextID uint
}

// NewMemoryStore creates a new in-memory storage instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos:  make(map[uint]*models.Todo),
		nextID: 1,
	}
}

// FindAll returns copies of all todos in display order
func (s *MemoryStore) FindAll(_ context.Context) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		result = append(result, *todo)
	}
	sortByOrder(result)

	return result, nil
}

// FindByID retrieves a todo by ID
func (s *MemoryStore) FindByID(_ context.Context, id uint) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, exists := s.todos[id]
	if !exists {
		return nil, ErrTodoNotFound
	}

	todoCopy := *todo
	return &todoCopy, nil
}

// MaxOrder returns the highest order value currently stored
func (s *MemoryStore) MaxOrder(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxOrder := 0
	for _, todo := range s.todos {
		if todo.Order > maxOrder {
			maxOrder = todo.Order
		}
	}
	return maxOrder, nil
}

// Insert stores a new todo, assigning the next ID
func (s *MemoryStore) Insert(_ context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	todo.ID = s.nextID
	todo.CreatedAt = now
	todo.UpdatedAt = now
	s.nextID++

	todoCopy := *todo
	s.todos[todo.ID] = &todoCopy
	return nil
}

// DeleteByID removes a todo
func (s *MemoryStore) DeleteByID(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.todos[id]; !exists {
		return ErrTodoNotFound
	}

	delete(s.todos, id)
	return nil
}

// UpdateCompleted sets the completion flag of a todo
func (s *MemoryStore) UpdateCompleted(_ context.Context, id uint, completed bool) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, exists := s.todos[id]
	if !exists {
		return nil, ErrTodoNotFound
	}

	todo.Completed = completed
	todo.UpdatedAt = time.Now()

	todoCopy := *todo
	return &todoCopy, nil
}

// UpdateOrders rewrites order values under a single write lock
func (s *MemoryStore) UpdateOrders(_ context.Context, updates []OrderUpdate) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	applied := make([]uint, 0, len(updates))
	for _, u := range updates {
		todo, exists := s.todos[u.ID]
		if !exists {
			continue
		}
		todo.Order = u.Order
		todo.UpdatedAt = now
		applied = append(applied, u.ID)
	}

	return applied, nil
}

// sortByOrder sorts todos by order, breaking ties by ID
func sortByOrder(todos []models.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		if todos[i].Order != todos[j].Order {
			return todos[i].Order < todos[j].Order
		}
		return todos[i].ID < todos[j].ID
	})
}

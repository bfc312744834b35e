// Package ordering owns the display order of todos: it assigns order on
// creation, rewrites it on bulk reorder, and keeps list output deterministic.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"futuristic-todo-api/internal/logging"
	"futuristic-todo-api/internal/models"
	"futuristic-todo-api/internal/storage"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyTitle  = errors.New("title must not be empty")
	ErrDuplicateID = errors.New("todo id listed more than once")
)

// ReorderResult reports which requested ids were written and which were skipped
type ReorderResult struct {
	Applied []uint
	Skipped []uint
}

// Manager implements list, create, delete and reorder over a storage.Store.
// It caches nothing; every call round-trips to the store.
type Manager struct {
	store storage.Store

	// mu serializes writes that derive order values from current state
	mu sync.Mutex
}

// NewManager creates an ordering manager backed by store
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// List returns all todos sorted by order, ties broken by id
func (m *Manager) List(ctx context.Context) ([]models.Todo, error) {
	todos, err := m.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

// Get returns a single todo
func (m *Manager) Get(ctx context.Context, id uint) (*models.Todo, error) {
	return m.store.FindByID(ctx, id)
}

// Create appends a new todo after the current highest order
func (m *Manager) Create(ctx context.Context, title string) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	maxOrder, err := m.store.MaxOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("read max order: %w", err)
	}

	todo := &models.Todo{
		Title:     title,
		Completed: false,
		Order:     maxOrder + 1,
	}
	if err := m.store.Insert(ctx, todo); err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	return todo, nil
}

// Delete removes a todo. Remaining todos keep their order values.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	return m.store.DeleteByID(ctx, id)
}

// SetCompleted changes the completion flag without touching order
func (m *Manager) SetCompleted(ctx context.Context, id uint, completed bool) (*models.Todo, error) {
	return m.store.UpdateCompleted(ctx, id, completed)
}

// Reorder assigns order i to ids[i] in a single atomic batch.
// Unknown ids are skipped; todos not listed keep their order.
func (m *Manager) Reorder(ctx context.Context, ids []uint) (ReorderResult, error) {
	seen := make(map[uint]struct{}, len(ids))
	updates := make([]storage.OrderUpdate, 0, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return ReorderResult{}, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
		updates = append(updates, storage.OrderUpdate{ID: id, Order: i})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	applied, err := m.store.UpdateOrders(ctx, updates)
	if err != nil {
		return ReorderResult{}, fmt.Errorf("reorder todos: %w", err)
	}

	result := ReorderResult{Applied: applied, Skipped: skippedIDs(ids, applied)}
	if len(result.Skipped) > 0 {
		logging.Logger.WithFields(logrus.Fields{
			"requested": len(ids),
			"skipped":   result.Skipped,
		}).Warn("Reorder skipped unknown todo ids")
	}

	return result, nil
}

// Normalize renumbers every todo to its 1-based rank in list order,
// removing gaps and duplicate order values.
func (m *Manager) Normalize(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todos, err := m.store.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list todos: %w", err)
	}

	updates := make([]storage.OrderUpdate, 0, len(todos))
	for i, todo := range todos {
		if todo.Order == i+1 {
			continue
		}
		updates = append(updates, storage.OrderUpdate{ID: todo.ID, Order: i + 1})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	applied, err := m.store.UpdateOrders(ctx, updates)
	if err != nil {
		return 0, fmt.Errorf("normalize orders: %w", err)
	}
	return len(applied), nil
}

func skippedIDs(requested, applied []uint) []uint {
	if len(applied) == len(requested) {
		return nil
	}
	done := make(map[uint]struct{}, len(applied))
	for _, id := range applied {
		done[id] = struct{}{}
	}
	var skipped []uint
	for _, id := range requested {
		if _, ok := done[id]; !ok {
			skipped = append(skipped, id)
		}
	}
	return skipped
}

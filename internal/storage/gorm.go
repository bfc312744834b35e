package storage

import (
	"context"
	"errors"
	"fmt"

	"futuristic-todo-api/internal/models"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a GORM connection (SQLite or PostgreSQL)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed storage instance
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindAll retrieves all todos in display order
func (s *GormStore) FindAll(ctx context.Context) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	if err := s.db.WithContext(ctx).
		Order("position ASC").
		Order("id ASC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// FindByID retrieves a todo by ID
func (s *GormStore) FindByID(ctx context.Context, id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := s.db.WithContext(ctx).First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// MaxOrder returns the highest order value, or 0 for an empty table
func (s *GormStore) MaxOrder(ctx context.Context) (int, error) {
	var maxOrder int
	if err := s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder, nil
}

// Insert creates a new row; the database assigns the ID
func (s *GormStore) Insert(ctx context.Context, todo *models.Todo) error {
	return s.db.WithContext(ctx).Create(todo).Error
}

// DeleteByID hard-deletes a todo
func (s *GormStore) DeleteByID(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Todo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// UpdateCompleted sets the completion flag and returns the updated row
func (s *GormStore) UpdateCompleted(ctx context.Context, id uint, completed bool) (*models.Todo, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Update("completed", completed)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTodoNotFound
	}
	return s.FindByID(ctx, id)
}

// UpdateOrders rewrites order values inside one transaction.
// Any failure rolls back every update in the batch.
func (s *GormStore) UpdateOrders(ctx context.Context, updates []OrderUpdate) ([]uint, error) {
	applied := make([]uint, 0, len(updates))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			result := tx.Model(&models.Todo{}).
				Where("id = ?", u.ID).
				Update("position", u.Order)
			if result.Error != nil {
				return fmt.Errorf("update order of todo %d: %w", u.ID, result.Error)
			}
			if result.RowsAffected > 0 {
				applied = append(applied, u.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return applied, nil
}

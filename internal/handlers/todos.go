package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"futuristic-todo-api/internal/logging"
	"futuristic-todo-api/internal/middleware"
	"futuristic-todo-api/internal/models"
	"futuristic-todo-api/internal/ordering"
	"futuristic-todo-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TodoService is the ordering behaviour the handlers depend on
type TodoService interface {
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id uint) (*models.Todo, error)
	Create(ctx context.Context, title string) (*models.Todo, error)
	Delete(ctx context.Context, id uint) error
	SetCompleted(ctx context.Context, id uint, completed bool) (*models.Todo, error)
	Reorder(ctx context.Context, ids []uint) (ordering.ReorderResult, error)
}

// TodoHandler handles todo operations
type TodoHandler struct {
	service TodoService
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(service TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// ListTodos handles GET /api/todos
func (h *TodoHandler) ListTodos(c *gin.Context) {
	todos, err := h.service.List(c.Request.Context())
	if err != nil {
		internalError(c, err, "Failed to retrieve todos")
		return
	}

	c.JSON(http.StatusOK, todos)
}

// CreateTodo handles POST /api/todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req models.CreateTodoRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		invalidInput(c, bindErr)
		return
	}

	todo, err := h.service.Create(c.Request.Context(), req.Title)
	if err != nil {
		if errors.Is(err, ordering.ErrEmptyTitle) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Code:    "EMPTY_TITLE",
				Message: "Title must not be empty",
			})
			return
		}
		internalError(c, err, "Failed to create todo")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// GetTodo handles GET /api/todos/:id
func (h *TodoHandler) GetTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}

	todo, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrTodoNotFound) {
			todoNotFound(c)
			return
		}
		internalError(c, err, "Failed to retrieve todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

// UpdateTodo handles PATCH /api/todos/:id. Only the completion flag is mutable.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}

	var req models.UpdateTodoRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		invalidInput(c, bindErr)
		return
	}

	todo, err := h.service.SetCompleted(c.Request.Context(), id, *req.Completed)
	if err != nil {
		if errors.Is(err, storage.ErrTodoNotFound) {
			todoNotFound(c)
			return
		}
		internalError(c, err, "Failed to update todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles DELETE /api/todos/:id
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrTodoNotFound) {
			todoNotFound(c)
			return
		}
		internalError(c, err, "Failed to delete todo")
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderTodos handles PUT /api/todos/reorder
func (h *TodoHandler) ReorderTodos(c *gin.Context) {
	var req models.ReorderTodosRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		invalidInput(c, bindErr)
		return
	}

	result, err := h.service.Reorder(c.Request.Context(), req.TodoIDs)
	if err != nil {
		if errors.Is(err, ordering.ErrDuplicateID) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Code:    "DUPLICATE_TODO_ID",
				Message: "Each todo may appear only once in todo_ids",
				Details: map[string]interface{}{"error": err.Error()},
			})
			return
		}
		internalError(c, err, "Failed to reorder todos")
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Message: "Todos reordered successfully",
		Skipped: result.Skipped,
	})
}

func parseTodoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "INVALID_TODO_ID",
			Message: "Todo ID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    "INVALID_INPUT",
		Message: "Invalid request body",
		Details: map[string]interface{}{"error": err.Error()},
	})
}

func todoNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Code:    "TODO_NOT_FOUND",
		Message: "The requested todo was not found",
	})
}

// internalError logs the cause and answers with a generic body
func internalError(c *gin.Context, err error, message string) {
	logging.Logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
	}).Error(message)

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
	})
}

package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Check statuses
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusWarning   = "warning"
	statusUnknown   = "unknown"
	statusInfo      = "info"
)

const pingTimeout = 2 * time.Second

// HealthHandler handles health check requests.
// A nil db means the todos live in process memory.
type HealthHandler struct {
	db        *gorm.DB
	todos     TodoService
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. todos may be nil, in which
// case the detailed report has no todos check.
func NewHealthHandler(db *gorm.DB, todos TodoService, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		todos:     todos,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BasicHealth is a simple health check
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusHealthy})
}

// DetailedHealth reports storage, migration, todo and runtime state.
// Responds 503 when storage is unreachable or todos cannot be read.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	ctx := c.Request.Context()

	checks := map[string]HealthCheck{
		"database":   h.checkDatabase(ctx),
		"migrations": h.checkMigrations(ctx),
		"system":     h.systemInfo(),
	}
	if h.todos != nil {
		checks["todos"] = h.checkTodos(ctx)
	}

	overall := statusHealthy
	for _, name := range []string{"database", "todos"} {
		if check, ok := checks[name]; ok && check.Status == statusUnhealthy {
			overall = statusUnhealthy
		}
	}

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    formatUptime(time.Since(h.startTime)),
		Version:   h.version,
		Checks:    checks,
	})
}

// ReadinessProbe checks if the application is ready to serve traffic
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	dbCheck := h.checkDatabase(c.Request.Context())

	if dbCheck.Status != statusHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reason":  "database_unavailable",
			"message": dbCheck.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessProbe checks if the application is alive
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	if h.db == nil {
		return HealthCheck{
			Status:  statusHealthy,
			Message: "Using in-memory storage",
			Details: map[string]interface{}{"backend": "memory"},
		}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return HealthCheck{Status: statusUnhealthy, Message: "Failed to get database instance"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return HealthCheck{
			Status:  statusUnhealthy,
			Message: "Database ping failed",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	stats := sqlDB.Stats()
	return HealthCheck{
		Status:  statusHealthy,
		Message: "Database connection is healthy",
		Details: map[string]interface{}{
			"backend":          h.db.Dialector.Name(),
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
			"wait_duration_ms": stats.WaitDuration.Milliseconds(),
		},
	}
}

// checkMigrations reads golang-migrate's bookkeeping row. Schemas created by
// AUTO_MIGRATE have no such table and report unknown.
func (h *HealthHandler) checkMigrations(ctx context.Context) HealthCheck {
	if h.db == nil {
		return HealthCheck{Status: statusUnknown, Message: "No database configured"}
	}

	db := h.db.WithContext(ctx)
	if !db.Migrator().HasTable("schema_migrations") {
		return HealthCheck{Status: statusUnknown, Message: "Migration table not found"}
	}

	var state struct {
		Version uint
		Dirty   bool
	}
	result := db.Table("schema_migrations").Select("version", "dirty").Limit(1).Scan(&state)
	if result.Error != nil {
		return HealthCheck{Status: statusUnknown, Message: "Could not read migration status"}
	}
	if result.RowsAffected == 0 {
		return HealthCheck{Status: statusUnknown, Message: "No migrations applied"}
	}

	check := HealthCheck{
		Status:  statusHealthy,
		Message: "Migrations are up to date",
		Details: map[string]interface{}{
			"version": state.Version,
			"dirty":   state.Dirty,
		},
	}
	if state.Dirty {
		check.Status = statusWarning
		check.Message = "Database is in dirty state - manual intervention required"
	}
	return check
}

// checkTodos lists the todos through the ordering service, so it covers the
// same read path the API uses.
func (h *HealthHandler) checkTodos(ctx context.Context) HealthCheck {
	todos, err := h.todos.List(ctx)
	if err != nil {
		return HealthCheck{
			Status:  statusUnhealthy,
			Message: "Failed to list todos",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	completed := 0
	nextOrder := 1
	for _, todo := range todos {
		if todo.Completed {
			completed++
		}
		if todo.Order >= nextOrder {
			nextOrder = todo.Order + 1
		}
	}

	return HealthCheck{
		Status:  statusHealthy,
		Message: "Todos are readable",
		Details: map[string]interface{}{
			"count":      len(todos),
			"completed":  completed,
			"next_order": nextOrder,
		},
	}
}

func (h *HealthHandler) systemInfo() HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthCheck{
		Status:  statusInfo,
		Message: "System information",
		Details: map[string]interface{}{
			"goroutines":    runtime.NumGoroutine(),
			"gomaxprocs":    runtime.GOMAXPROCS(0),
			"heap_alloc_mb": m.HeapAlloc >> 20,
			"num_gc":        m.NumGC,
			"go_version":    runtime.Version(),
		},
	}
}

// formatUptime rounds down to whole seconds, e.g. "26h3m4s"
func formatUptime(d time.Duration) string {
	return d.Truncate(time.Second).String()
}

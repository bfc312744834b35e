package server

import (
	"futuristic-todo-api/internal/handlers"
	"futuristic-todo-api/internal/logging"
	"futuristic-todo-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	Todos   handlers.TodoService
	DB      *gorm.DB // nil when todos are kept in memory
	Version string

	CORS      *middleware.CORSConfig
	Security  *middleware.SecurityConfig
	RateLimit *middleware.RateLimitConfig
}

// NewRouter builds the gin engine. Nil middleware configs are read from the
// environment.
func NewRouter(deps Deps) *gin.Engine {
	if deps.CORS == nil {
		deps.CORS = middleware.NewCORSConfigFromEnv()
	}
	if deps.Security == nil {
		deps.Security = middleware.NewSecurityConfigFromEnv()
	}
	if deps.RateLimit == nil {
		deps.RateLimit = middleware.NewRateLimitConfigFromEnv()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(deps.Security.TrustedProxies); err != nil {
		logging.Logger.WithError(err).Warn("Ignoring invalid TRUSTED_PROXIES")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(deps.CORS),
		middleware.RequestSizeLimit(deps.Security.MaxRequestBodySize),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorSanitizer(),
		middleware.GlobalRateLimiter(deps.RateLimit),
	)

	todoHandler := handlers.NewTodoHandler(deps.Todos)
	read := middleware.ReadRateLimiter(deps.RateLimit)
	write := middleware.WriteRateLimiter(deps.RateLimit)
	validID := middleware.IDValidator("id")

	todos := router.Group("/api/todos")
	{
		todos.GET("", read, todoHandler.ListTodos)
		todos.POST("", write, todoHandler.CreateTodo)
		todos.PUT("/reorder", write, todoHandler.ReorderTodos)

		todos.GET("/:id", read, validID, todoHandler.GetTodo)
		todos.PATCH("/:id", write, validID, todoHandler.UpdateTodo)
		todos.DELETE("/:id", write, validID, todoHandler.DeleteTodo)
	}

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Todos, deps.Version)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.BasicHealth)
		health.GET("/detailed", healthHandler.DetailedHealth)
		health.GET("/ready", healthHandler.ReadinessProbe)
		health.GET("/live", healthHandler.LivenessProbe)
	}

	return router
}

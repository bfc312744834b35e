package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"futuristic-todo-api/internal/config"
	"futuristic-todo-api/internal/database"
	"futuristic-todo-api/internal/logging"
	"futuristic-todo-api/internal/ordering"
	"futuristic-todo-api/internal/server"
	"futuristic-todo-api/internal/storage"
	"futuristic-todo-api/internal/tls"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize logging first
	logging.InitLogger(logging.NewLogConfigFromEnv())
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	var (
		store storage.Store
		db    *gorm.DB
	)

	if cfg.Server.UseMemory {
		logging.Logger.Info("Using in-memory storage")
		store = storage.NewMemoryStore()
	} else {
		db, err = database.Connect(&cfg.Database)
		if err != nil {
			logging.Logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logging.Logger.WithError(err).Warn("Failed to close database")
			}
		}()

		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				logging.Logger.Fatalf("Failed to run migrations: %v", err)
			}
		}

		logging.Logger.WithField("driver", cfg.Database.Driver).Info("Database storage initialized successfully")
		store = storage.NewGormStore(db)
	}

	router := server.NewRouter(server.Deps{
		Todos:   ordering.NewManager(store),
		DB:      db,
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Logger.WithField("version", version).Infof("Starting server on port %s...", cfg.Server.Port)
	if err := server.Run(ctx, &cfg.Server, tls.NewConfigFromEnv(), router); err != nil {
		logging.Logger.WithError(err).Error("Server exited with error")
		stop()
		if db != nil {
			database.Close(db)
		}
		logging.Close()
		os.Exit(1)
	}
}

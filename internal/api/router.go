package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskdeck/task-system/internal/api/handler"
	"github.com/taskdeck/task-system/internal/api/middleware"
	"github.com/taskdeck/task-system/internal/core/security"
	"github.com/taskdeck/task-system/internal/core/service"
	mongodb "github.com/taskdeck/task-system/internal/infrastructure/db/mongo"
	redisdb "github.com/taskdeck/task-system/internal/infrastructure/db/redis"
)

// Options carries the tunables the router needs beyond its connections.
type Options struct {
	BcryptCost   int
	TaskCacheTTL time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, log zerolog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("taskdeck"))

	// --- Dependencies ---
	hasher := security.NewBcryptHasher(opts.BcryptCost)

	userRepo := mongodb.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, hasher, log)
	authHandler := handler.NewAuthHandler(authService)

	taskRepo := mongodb.NewTaskRepository(db)
	taskCache := redisdb.NewTaskCache(rdb, opts.TaskCacheTTL)
	taskService := service.NewTaskService(taskRepo, taskCache, log)
	taskHandler := handler.NewTaskHandler(taskService)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)

	// --- Task routes (Basic auth, ownership-scoped) ---
	v1 := e.Group("/v1", middleware.BasicAuth(authService))
	v1.GET("/tasks", taskHandler.List)
	v1.POST("/tasks", taskHandler.Create)
	v1.GET("/tasks/:id", taskHandler.Get)
	v1.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
	v1.DELETE("/tasks/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

package main

import (
	"fmt"
	"log"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repositories"
	"taskmanager/internal/services"
	"taskmanager/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber    *fiber.App
	mqClient *rabbitmq.Client
	closers  []func() error
}

// NewApp builds the store, optional event publisher, services and routes
// described by cfg.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{}

	// --- Initialize Store ---
	store, err := a.openStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mqClient = mqClient
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, task events are disabled")
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users(), cfg.Auth)
	taskService := services.NewTaskService(store, publisher, cfg.RabbitMQ.Exchange)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": cfg.Database.Driver,
			"events":   a.mqClient != nil,
		})
	})

	// Authentication routes (public)
	authHandler.RegisterRoutes(app)

	// Protected routes (require JWT authentication)
	protectedRoutes := app.Group("", middleware.AuthRequired(authService))
	taskHandler.RegisterRoutes(protectedRoutes)

	a.Fiber = app
	return a, nil
}

func (a *App) openStore(cfg config.DatabaseConfig) (repositories.Store, error) {
	if cfg.Driver == "memory" {
		log.Println("Using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)
	log.Printf("Connected to %s database", cfg.Driver)
	return repositories.NewGORMStore(db), nil
}

// Close releases the broker connection and database handle, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}

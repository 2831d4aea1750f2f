package handlers

import (
	"log"

	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks. Its routes must be mounted
// behind middleware.AuthRequired.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// RegisterRoutes registers the task routes with the Fiber app.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create-task", h.HandleCreateTask)
	router.Get("/get-all-tasks", h.HandleGetAllTasks)
	router.Delete("/delete-task/:id", h.HandleDeleteTask)
	router.Put("/update-task/:id", h.HandleUpdateTask)
	router.Put("/update-imp-task/:id", h.HandleToggleImportant)
	router.Put("/update-complete-task/:id", h.HandleToggleCompleted)
	router.Get("/important-tasks", h.flagHandler(models.FlagImportant))
	router.Get("/completed-tasks", h.flagHandler(models.FlagCompleted))
	router.Get("/incomplete-tasks", h.flagHandler(models.FlagIncomplete))
}

// CreateTaskRequest represents the request body for task creation.
type CreateTaskRequest struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// HandleCreateTask creates a task owned by the authenticated user.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	userID := middleware.UserID(c)
	log.Printf("Creating task for user %s", userID)

	task, err := h.service.CreateTask(c.UserContext(), userID, req.Title, req.Desc)
	if err != nil {
		log.Printf("Error creating task: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task Created",
		"task":    task,
	})
}

// HandleGetAllTasks lists the authenticated user's tasks, newest first.
func (h *TaskHandler) HandleGetAllTasks(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	tasks, err := h.service.ListTasks(c.UserContext(), userID)
	if err != nil {
		log.Printf("Error fetching tasks for user %s: %v", userID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": tasks,
	})
}

// HandleDeleteTask deletes a task by id.
func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	userID := middleware.UserID(c)
	log.Printf("Deleting task %s for user %s", taskID, userID)

	if err := h.service.DeleteTask(c.UserContext(), taskID, userID); err != nil {
		log.Printf("Error deleting task %s: %v", taskID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

// HandleUpdateTask applies a partial title/desc update.
func (h *TaskHandler) HandleUpdateTask(c *fiber.Ctx) error {
	var update services.TaskUpdate
	if err := parseBody(c, &update); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	taskID := c.Params("id")
	userID := middleware.UserID(c)
	log.Printf("Updating task %s for user %s", taskID, userID)

	task, err := h.service.UpdateTask(c.UserContext(), taskID, userID, update)
	if err != nil {
		log.Printf("Error updating task %s: %v", taskID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// HandleToggleImportant flips a task's important flag.
func (h *TaskHandler) HandleToggleImportant(c *fiber.Ctx) error {
	taskID := c.Params("id")

	task, err := h.service.ToggleImportant(c.UserContext(), taskID)
	if err != nil {
		log.Printf("Error updating important task %s: %v", taskID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// HandleToggleCompleted flips a task's completed flag.
func (h *TaskHandler) HandleToggleCompleted(c *fiber.Ctx) error {
	taskID := c.Params("id")
	userID := middleware.UserID(c)
	log.Printf("Updating task %s as completed for user %s", taskID, userID)

	task, err := h.service.ToggleCompleted(c.UserContext(), taskID, userID)
	if err != nil {
		log.Printf("Error updating task %s: %v", taskID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task marked as completed",
		"task":    task,
	})
}

func (h *TaskHandler) flagHandler(flag models.TaskFlag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)

		tasks, err := h.service.QueryByFlag(c.UserContext(), userID, flag)
		if err != nil {
			log.Printf("Error fetching %s tasks for user %s: %v", flag, userID, err)
			return respondError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"data": tasks,
		})
	}
}

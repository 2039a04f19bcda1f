package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/internal/config"
	"github.com/NaufalAlfiR/task-management-system/internal/models"
	"github.com/NaufalAlfiR/task-management-system/internal/query"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/NaufalAlfiR/task-management-system/internal/ws"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

// TaskHandler serves the task CRUD, list, and stats endpoints. Every
// operation is scoped to the authenticated owner; a task belonging to
// someone else answers 404 so its existence is not revealed.
type TaskHandler struct {
	Tasks store.TaskStore
	Hub   *ws.Hub
}

func NewTaskHandler(tasks store.TaskStore, hub *ws.Hub) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Hub: hub}
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, _ := identity(c)

	type TaskRequest struct {
		Title       string     `json:"title" validate:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		Category    string     `json:"category"`
		DueDate     *time.Time `json:"due_date"`
		Tags        []string   `json:"tags"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return respondErrDetails(c, fiber.StatusBadRequest, apperrors.CodeValidation,
			"Validation error", err.Error())
	}

	if req.Priority == "" {
		req.Priority = string(models.PriorityMedium)
	}
	if req.Category == "" {
		req.Category = string(models.CategoryOther)
	}
	priority := models.Priority(req.Priority)
	if !priority.Valid() {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid priority")
	}
	category := models.Category(req.Category)
	if !category.Valid() {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid category")
	}

	task := models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Category:    category,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if err := h.Tasks.Create(c.Context(), &task); err != nil {
		return respondStoreErr(c, err, "creating task")
	}

	h.Hub.Publish(userID, ws.EventTaskCreated, task)
	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID))
	return respondOK(c, fiber.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID, _ := identity(c)

	filter, err := query.ParseFilter(query.Params{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort"),
		Order:    c.Query("order"),
	})
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, err.Error())
	}

	// Ownership is applied first and unconditionally: only this owner's
	// tasks ever reach the query engine.
	tasks, err := h.Tasks.ListByOwner(c.Context(), userID)
	if err != nil {
		return respondStoreErr(c, err, "fetching tasks")
	}
	tasks = query.Apply(tasks, filter)

	return respondOK(c, fiber.StatusOK, "Tasks fetched successfully", fiber.Map{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (h *TaskHandler) Stats(c *fiber.Ctx) error {
	userID, _ := identity(c)

	tasks, err := h.Tasks.ListByOwner(c.Context(), userID)
	if err != nil {
		return respondStoreErr(c, err, "fetching tasks")
	}
	return respondOK(c, fiber.StatusOK, "Stats fetched successfully", query.Stats(tasks))
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	userID, _ := identity(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid task ID")
	}

	task, err := h.Tasks.Get(c.Context(), taskID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondErr(c, fiber.StatusNotFound, apperrors.CodeNotFound, "Task not found")
		}
		return respondStoreErr(c, err, "fetching task")
	}
	return respondOK(c, fiber.StatusOK, "Task found", task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID, _ := identity(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid task ID")
	}

	// Pointer fields so absent keys stay untouched. The body may carry id
	// or user_id; neither has a slot in the patch, so both stay immutable.
	type UpdateTaskRequest struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Priority     *string    `json:"priority"`
		Category     *string    `json:"category"`
		DueDate      *time.Time `json:"due_date"`
		ClearDueDate bool       `json:"clear_due_date"`
		Completed    *bool      `json:"completed"`
		Tags         *[]string  `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Bad request")
	}

	patch := store.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Completed:    req.Completed,
		Tags:         req.Tags,
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid priority")
		}
		patch.Priority = &priority
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		if !category.Valid() {
			return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid category")
		}
		patch.Category = &category
	}

	task, err := h.Tasks.Update(c.Context(), taskID, userID, patch)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondErr(c, fiber.StatusNotFound, apperrors.CodeNotFound, "Task not found")
		}
		return respondStoreErr(c, err, "updating task")
	}

	h.Hub.Publish(userID, ws.EventTaskUpdated, task)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return respondOK(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID, _ := identity(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid task ID")
	}

	if err := h.Tasks.Delete(c.Context(), taskID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondErr(c, fiber.StatusNotFound, apperrors.CodeNotFound, "Task not found")
		}
		return respondStoreErr(c, err, "deleting task")
	}

	h.Hub.Publish(userID, ws.EventTaskDeleted, fiber.Map{"id": taskID})
	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return respondOK(c, fiber.StatusOK, "Task deleted successfully", nil)
}

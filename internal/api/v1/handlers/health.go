package handlers

import (
	"context"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NaufalAlfiR/task-management-system/internal/middleware"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
)

// HealthHandler serves the operational probes. The JSON shapes are fixed;
// tooling depends on them.
type HealthHandler struct {
	Users   store.UserStore
	Tasks   store.TaskStore
	ReadyFn func(ctx context.Context) error // nil means always ready
	started time.Time
}

func NewHealthHandler(users store.UserStore, tasks store.TaskStore, readyFn func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Users: users, Tasks: tasks, ReadyFn: readyFn, started: time.Now()}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.ReadyFn != nil {
		if err := h.ReadyFn(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"ready": false,
				"error": err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"ready": true})
}

func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"alive": true})
}

func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	users, _ := h.Users.Count(c.Context())
	tasks, _ := h.Tasks.Count(c.Context())

	return c.JSON(fiber.Map{
		"uptime_seconds":     int(time.Since(h.started).Seconds()),
		"goroutines":         runtime.NumGoroutine(),
		"memory_alloc_bytes": mem.Alloc,
		"requests_total":     middleware.RequestsTotal(),
		"users_total":        users,
		"tasks_total":        tasks,
	})
}

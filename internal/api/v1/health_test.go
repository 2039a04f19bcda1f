package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaufalAlfiR/task-management-system/internal/middleware"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/gofiber/fiber/v2"
)

func TestProbes(t *testing.T) {
	app, _ := newTestApp()

	resp, result := doJSON(t, app, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", result["status"])
	assert.Contains(t, result, "uptime_seconds")

	resp, result = doJSON(t, app, "GET", "/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["ready"])

	resp, result = doJSON(t, app, "GET", "/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["alive"])
}

func TestReadyFailure(t *testing.T) {
	deps := Deps{
		Users:   store.NewMemoryUserStore(),
		Tasks:   store.NewMemoryTaskStore(),
		Tokens:  nil,
		ReadyFn: func(ctx context.Context) error { return errors.New("db down") },
	}
	app := fiber.New()
	RegisterRoutes(app, deps)

	resp, result := doJSON(t, app, "GET", "/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, result["ready"])
	assert.Equal(t, "db down", result["error"])
}

func TestMetrics(t *testing.T) {
	app, _ := newTestApp()
	bearer := registerAndLogin(t, app, "alice")
	resp, _ := doJSON(t, app, "POST", "/api/tasks/", bearer, map[string]interface{}{"title": "m"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, result := doJSON(t, app, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), result["users_total"])
	assert.Equal(t, float64(1), result["tasks_total"])
	assert.Contains(t, result, "goroutines")
	assert.Contains(t, result, "memory_alloc_bytes")
	assert.Contains(t, result, "requests_total")
}

func TestPanicRecovered(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

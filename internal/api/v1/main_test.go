package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/NaufalAlfiR/task-management-system/internal/middleware"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
	"github.com/NaufalAlfiR/task-management-system/pkg/token"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	logger.InitLoggers()
	defer logger.SyncLoggers()
	os.Exit(m.Run())
}

// newTestApp builds the Fiber app used by the tests: memory stores, a short
// token TTL, no hub and no auth limiter.
func newTestApp() (*fiber.App, Deps) {
	deps := Deps{
		Users:  store.NewMemoryUserStore(),
		Tasks:  store.NewMemoryTaskStore(),
		Tokens: token.NewService("test-secret", time.Hour),
	}
	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	RegisterRoutes(app, deps)
	return app, deps
}

// doJSON fires one request at the app and decodes the JSON response body.
func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	return resp, result
}

// registerAndLogin creates a fresh user and returns its bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, _ := doJSON(t, app, "POST", "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, result := doJSON(t, app, "POST", "/auth/login", "", map[string]string{
		"username": username,
		"password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	bearer, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, bearer)
	return bearer
}

func errorCode(t *testing.T, result map[string]interface{}) string {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected error object in response: %v", result)
	code, _ := errObj["code"].(string)
	return code
}

package v1

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/NaufalAlfiR/task-management-system/internal/api/v1/handlers"
	"github.com/NaufalAlfiR/task-management-system/internal/middleware"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/NaufalAlfiR/task-management-system/internal/ws"
	"github.com/NaufalAlfiR/task-management-system/pkg/token"
)

// Deps carries everything the route handlers need. Handlers only see the
// store interfaces, so the backend can change without touching them.
type Deps struct {
	Users       store.UserStore
	Tasks       store.TaskStore
	Tokens      *token.Service
	Hub         *ws.Hub
	AuthLimiter fiber.Handler                   // optional, per-IP limit on /auth
	ReadyFn     func(ctx context.Context) error // optional readiness probe
}

func RegisterRoutes(app *fiber.App, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens)
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Hub)
	healthHandler := handlers.NewHealthHandler(d.Users, d.Tasks, d.ReadyFn)

	// Probes
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)
	app.Get("/live", healthHandler.Live)
	app.Get("/metrics", healthHandler.Metrics)

	// Auth
	auth := app.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter)
	}
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Everything under /api requires a valid bearer token
	api := app.Group("/api", middleware.Protected(d.Tokens))
	api.Get("/profile", authHandler.Profile)

	tasks := api.Group("/tasks")
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/", taskHandler.List)
	tasks.Get("/stats", taskHandler.Stats)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Delete("/:id", taskHandler.Delete)

	// Task event stream for the client view. The token rides the query
	// string because browser WebSocket clients cannot set headers.
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if !websocket.IsWebSocketUpgrade(c) {
				return fiber.ErrUpgradeRequired
			}
			claims, err := d.Tokens.Parse(c.Query("token"))
			if err != nil {
				return fiber.ErrForbidden
			}
			c.Locals("ownerID", claims.UserID)
			return c.Next()
		})
		app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
			client := &ws.Client{
				OwnerID: conn.Locals("ownerID").(int),
				Conn:    conn,
			}
			d.Hub.Register <- client
			defer func() {
				d.Hub.Unregister <- client
			}()
			// The stream is one-way; reading just detects the close.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/configs"
	v1 "github.com/NaufalAlfiR/task-management-system/internal/api/v1"
	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/internal/config"
	"github.com/NaufalAlfiR/task-management-system/internal/middleware"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/NaufalAlfiR/task-management-system/internal/ws"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
	"github.com/NaufalAlfiR/task-management-system/pkg/token"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	deps := buildStores(cfg)
	deps.Tokens = token.NewService(cfg.JWTSecret, cfg.JWTTTL)
	deps.AuthLimiter = middleware.PerIP(cfg.AuthRateRPS, cfg.AuthRateBurst)

	hub := ws.NewHub()
	go hub.Run()
	deps.Hub = hub

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	v1.RegisterRoutes(app, deps)

	// Static single-page client, with a catch-all fallback to its entry
	// document for unmatched GET routes.
	app.Static("/", cfg.StaticDir)
	app.Use(func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet {
			return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    apperrors.CodeNotFound,
				"message": "Route not found",
			},
		})
	})

	// Drain in-flight connections for a bounded period on termination.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.SystemLogger.Info("Shutting down",
			zap.Duration("timeout", cfg.ShutdownTimeout))
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			logger.ErrorLogger.Error("Shutdown error", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		os.Exit(1)
	}
}

// buildStores picks the storage backend from config. Handlers only ever see
// the store interfaces, so swapping backends never touches them.
func buildStores(cfg configs.Config) v1.Deps {
	var deps v1.Deps

	switch cfg.StorageDriver {
	case "postgres":
		pg, err := store.OpenPostgres(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			logger.ErrorLogger.Error("Database connection error", zap.Error(err))
			os.Exit(1)
		}
		if err := pg.CreateTablesIfNotExist(config.Ctx); err != nil {
			logger.ErrorLogger.Error("Database migration error", zap.Error(err))
			os.Exit(1)
		}
		logger.SystemLogger.Info("Database connected")
		deps.Users = pg
		deps.Tasks = pg.Tasks()
		deps.ReadyFn = pg.Ping
	default:
		logger.SystemLogger.Info("Using in-memory storage, data is lost on restart")
		deps.Users = store.NewMemoryUserStore()
		deps.Tasks = store.NewMemoryTaskStore()
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(config.Ctx).Err(); err != nil {
			logger.ErrorLogger.Error("Redis connection error", zap.Error(err))
			os.Exit(1)
		}
		logger.SystemLogger.Info("Redis task cache enabled", zap.String("addr", cfg.RedisAddr))
		deps.Tasks = store.NewCachedTaskStore(deps.Tasks, rdb)
	}

	return deps
}

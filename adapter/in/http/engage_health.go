package http

import (
	"context"
	"time"

	"engage_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthHandler struct {
	db    *pgxpool.Pool
	redis *redis.Client
	mongo *mongo.Client
}

func NewHealthHandler(db *pgxpool.Pool, redis *redis.Client, mongo *mongo.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
		mongo: mongo,
	}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/health/stats", h.Stats)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats exposes connection pool and latency statistics for operators.
func (h *HealthHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"pools":     metrics.AllPoolStats(),
		"health":    metrics.AllPoolHealth(),
		"latencies": metrics.AllLatencies(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	if h.mongo != nil {
		if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
			checks["mongodb"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["mongodb"] = "healthy"
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

package system

import (
	"context"
	"time"

	"go-marketplace/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type HealthApi struct {
	mongodb *database.MongodbDB
	redis   *redis.Client
}

func NewHealthApi(mongodb *database.MongodbDB, redisClient *redis.Client) *HealthApi {
	return &HealthApi{mongodb: mongodb, redis: redisClient}
}

// Setup registers the unauthenticated health probe
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.health)
}

func (h *HealthApi) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"mongo": "ok", "redis": "ok"}
	healthy := true
	if err := h.mongodb.DB.Client().Ping(ctx, nil); err != nil {
		checks["mongo"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"healthy": healthy, "checks": checks})
}

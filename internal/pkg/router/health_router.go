package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mkravets/ArtPeak/internal/pkg/cache"
	"github.com/mkravets/ArtPeak/internal/pkg/database"
)

type HealthRouter struct {
}

func NewHealthRouter() *HealthRouter {
	return &HealthRouter{}
}

// InstallRouter attaches the liveness probe. It reports degraded instead of
// failing when a dependency is down, so the process is not restarted for a
// database blip.
func (h *HealthRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"status": "ok"}
		code := fiber.StatusOK

		if sqlDB, err := database.GetDB().DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unreachable"
			status["status"] = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		if err := cache.GetClient().Ping(ctx).Err(); err != nil {
			status["cache"] = "unreachable"
			status["status"] = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	})
}

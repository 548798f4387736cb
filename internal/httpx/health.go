package httpx

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/store"
)

// HealthHandler reports liveness and database reachability.
//
//	@Summary		Health check
//	@Description	Report API health and database reachability
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string	"healthy"
//	@Failure		503	{object}	map[string]string	"database unreachable"
//	@Router			/health [get]
func HealthHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if st == nil {
			return kit.OK(c, fiber.Map{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Context(), time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			httpxLogger.Sugar().Warnf("health: db ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"code":       "E_UNAVAILABLE",
				"message":    "database unreachable",
				"data":       fiber.Map{"status": "degraded", "db": "down"},
				"request_id": kit.RequestID(c),
			})
		}
		return kit.OK(c, fiber.Map{"status": "ok", "db": st.Dialect()})
	}
}

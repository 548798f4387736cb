package httpx

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/logx"
)

var httpxLogger = logx.GetScope("httpx")

// RegisterCommonMiddlewares registers recovery, request ids, CORS, timing
// headers and a structured access log.
func RegisterCommonMiddlewares(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		if err != nil {
			// run the error handler now so the log sees the final status
			if herr := app.ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		c.Set("X-Response-Time", latency.String())
		c.Set("Server-Timing", fmt.Sprintf("app;dur=%.3f", float64(latency.Microseconds())/1000))

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("ip", c.IP()),
			zap.String("ua", c.Get("User-Agent")),
			zap.String("request_id", kit.RequestID(c)),
		}
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			httpxLogger.Warn("access", fields...)
		} else {
			httpxLogger.Info("access", fields...)
		}
		return nil
	})
}

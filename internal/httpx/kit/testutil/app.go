package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
)

// NewApp creates a Fiber app with the standard error handler and applies
// the given mount functions to register selective routes. Useful for tests.
func NewApp(mounts ...func(*fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: kit.ErrorHandler()})
	for _, m := range mounts {
		if m != nil {
			m(app)
		}
	}
	return app
}

// AsUser mounts a middleware that authenticates every request as id.
func AsUser(id uuid.UUID) func(*fiber.App) {
	return func(app *fiber.App) {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("auth", &mw.AuthContext{Subject: mw.UserSubject(id), Kind: "user"})
			return c.Next()
		})
	}
}

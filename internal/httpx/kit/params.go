package kit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParamUUID parses the route parameter name as a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest("invalid "+name, raw)
	}
	return id, nil
}

// QueryUUID parses an optional query parameter as a UUID.
func QueryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, BadRequest("invalid "+name, raw)
	}
	return &id, nil
}

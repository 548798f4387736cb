// Package mw contains HTTP middleware including authentication and rate limiting.
package mw

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userPrefix = "user:"

// AuthContext holds authentication details extracted from JWT.
type AuthContext struct {
	Subject string // user:<uuid>
	Kind    string // user
	Roles   []string
}

// TokenParser parses a bearer token into an auth context.
type TokenParser func(token string) (*AuthContext, error)

// UserSubject renders the JWT subject of a user id.
func UserSubject(id uuid.UUID) string { return userPrefix + id.String() }

// JWTMiddleware attaches the auth context parsed from the bearer token.
// Requests without a valid token pass through unauthenticated.
func JWTMiddleware(parse TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Next()
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		if ac, err := parse(token); err == nil && ac != nil && ac.Subject != "" {
			c.Locals("auth", ac)
		}
		return c.Next()
	}
}

// RequireUser enforces an authenticated user (kind=user)
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}

// RequireRoles enforces that the authenticated context has at least one of the roles.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, _ := c.Locals("auth").(*AuthContext)
		if ac == nil || ac.Kind == "" {
			return fiber.ErrUnauthorized
		}
		if len(roles) == 0 {
			return c.Next()
		}
		for _, need := range roles {
			for _, have := range ac.Roles {
				if have == need {
					return c.Next()
				}
			}
		}
		return fiber.ErrForbidden
	}
}

// UserID returns the id of the authenticated user, if any.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	ac, _ := c.Locals("auth").(*AuthContext)
	if ac == nil || ac.Kind != "user" || !strings.HasPrefix(ac.Subject, userPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(ac.Subject, userPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"planeat-api/internal/config"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/store"
)

// LoginHandler exchanges username and password for an access token.
//
//	@Summary      Password login
//	@Description  Verify credentials and issue an access token
//	@Tags         auth
//	@Accept       json
//	@Produce      json
//	@Param        body  body      auth.LoginRequest  true  "credentials"
//	@Success      200   {object}  auth.TokenResponse
//	@Failure      400   {object}  map[string]interface{}
//	@Failure      401   {object}  map[string]interface{}
//	@Router       /api/v1/auth/login [post]
func LoginHandler(cfg *config.Config, st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
			return kit.BadRequest("username and password required", nil)
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		u, err := st.UserByUsername(ctx, strings.TrimSpace(req.Username))
		if errors.Is(err, store.ErrNotFound) {
			return kit.Unauthorized("invalid credentials")
		}
		if err != nil {
			return kit.InternalError("query user failed", err.Error())
		}
		if !VerifyPassword(req.Password, u.PasswordHash) {
			return kit.Unauthorized("invalid credentials")
		}
		access, err := SignAccess(cfg, u.ID, nil)
		if err != nil {
			return kit.InternalError("sign access failed", err.Error())
		}
		return kit.OK(c, TokenResponse{AccessToken: access, TokenType: "Bearer", ExpiresIn: cfg.JWT.AccessMin * 60, UserID: u.ID.String()})
	}
}

// MeHandler returns the auth context of the caller.
//
//	@Summary      Who am I
//	@Description  Return current auth context
//	@Tags         auth
//	@Produce      json
//	@Security     BearerAuth
//	@Success      200   {object}  map[string]interface{}
//	@Failure      401   {object}  map[string]interface{}
//	@Router       /api/v1/auth/me [get]
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, _ := c.Locals("auth").(*mw.AuthContext)
		if ac == nil {
			return fiber.ErrUnauthorized
		}
		return kit.OK(c, fiber.Map{"subject": ac.Subject, "kind": ac.Kind, "roles": ac.Roles})
	}
}

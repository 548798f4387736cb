package users

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/store"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// CreateUserHandler registers a new user.
//
//	@Summary      Register user
//	@Description  Create an account; the password is stored as an argon2id hash
//	@Tags         users
//	@Accept       json
//	@Produce      json
//	@Param        user  body      users.UserCreateRequest  true  "registration"
//	@Success      201   {object}  map[string]interface{}  "created"
//	@Failure      400   {object}  map[string]interface{}  "bad request"
//	@Failure      409   {object}  map[string]interface{}  "username taken"
//	@Router       /api/v1/users [post]
func CreateUserHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UserCreateRequest
		if err := c.BodyParser(&body); err != nil {
			return kit.BadRequest("invalid body", nil)
		}
		body.Username = strings.TrimSpace(body.Username)
		if !usernameRe.MatchString(body.Username) {
			return kit.BadRequest("username must be 3-32 letters, digits or ._-", body.Username)
		}
		if body.Email != "" {
			if _, err := mail.ParseAddress(body.Email); err != nil {
				return kit.BadRequest("invalid email", body.Email)
			}
		}
		hash, err := auth.HashPassword(body.Password)
		if errors.Is(err, auth.ErrWeakPassword) {
			return kit.BadRequest(err.Error(), nil)
		}
		if err != nil {
			return kit.InternalError("hash password failed", err.Error())
		}

		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		u := store.User{
			Username:     body.Username,
			Email:        body.Email,
			DisplayName:  lo.Ternary(body.DisplayName != "", body.DisplayName, body.Username),
			PasswordHash: hash,
		}
		if err := st.CreateUser(ctx, &u); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return kit.Conflict("username already taken", body.Username)
			}
			return kit.InternalError("create user failed", err.Error())
		}
		return kit.Created(c, u)
	}
}

// MeHandler returns the caller's account.
//
//	@Summary      Current user
//	@Tags         users
//	@Produce      json
//	@Security     BearerAuth
//	@Success      200  {object}  map[string]interface{}
//	@Failure      401  {object}  map[string]interface{}
//	@Router       /api/v1/users/me [get]
func MeHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		u, err := st.UserByID(ctx, uid)
		if errors.Is(err, store.ErrNotFound) {
			return kit.Unauthorized("user no longer exists")
		}
		if err != nil {
			return kit.InternalError("query user failed", err.Error())
		}
		return kit.OK(c, u)
	}
}

// GetUserHandler returns a public profile.
//
//	@Summary      Get user
//	@Tags         users
//	@Produce      json
//	@Param        id   path      string  true  "user id"
//	@Success      200  {object}  users.PublicUser
//	@Failure      404  {object}  map[string]interface{}
//	@Router       /api/v1/users/{id} [get]
func GetUserHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := kit.ParamUUID(c, "id")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		u, err := st.UserByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return kit.NotFound("user not found")
		}
		if err != nil {
			return kit.InternalError("query user failed", err.Error())
		}
		return kit.OK(c, PublicUser{ID: u.ID.String(), Username: u.Username, DisplayName: u.DisplayName})
	}
}

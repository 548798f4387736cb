// Package social serves favorites, ratings, comments and recommendations.
package social

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/mqx"
	"planeat-api/internal/store"
)

const maxCommentLen = 2000

func caller(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	uid, ok := mw.UserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	rid, err := kit.ParamUUID(c, "id")
	return uid, rid, err
}

// refError maps a dangling foreign key to 404 on the recipe.
func refError(err error, what string) error {
	if errors.Is(err, store.ErrDanglingRef) || errors.Is(err, store.ErrNotFound) {
		return kit.NotFound("recipe not found")
	}
	return kit.InternalError(what+" failed", err.Error())
}

// AddFavoriteHandler marks a recipe as favorite. Repeating it is harmless.
//
//	@Summary   Add favorite
//	@Tags      social
//	@Security  BearerAuth
//	@Param     id   path  string  true  "recipe id"
//	@Success   204
//	@Failure   404  {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/favorite [put]
func AddFavoriteHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if err := st.AddFavorite(ctx, uid, rid); err != nil {
			return refError(err, "add favorite")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RemoveFavoriteHandler unmarks a favorite.
//
//	@Summary   Remove favorite
//	@Tags      social
//	@Security  BearerAuth
//	@Param     id   path  string  true  "recipe id"
//	@Success   204
//	@Failure   404  {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/favorite [delete]
func RemoveFavoriteHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if err := st.RemoveFavorite(ctx, uid, rid); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return kit.NotFound("favorite not found")
			}
			return kit.InternalError("remove favorite failed", err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListFavoritesHandler lists the caller's favorite recipes, newest first.
//
//	@Summary   My favorites
//	@Tags      social
//	@Produce   json
//	@Security  BearerAuth
//	@Success   200  {array}  agenda.Recipe
//	@Router    /api/v1/users/me/favorites [get]
func ListFavoritesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		items, err := st.Favorites(ctx, uid)
		if err != nil {
			return kit.InternalError("query favorites failed", err.Error())
		}
		return kit.OK(c, items)
	}
}

// RateHandler creates or replaces the caller's rating of a recipe.
//
//	@Summary   Rate recipe
//	@Tags      social
//	@Accept    json
//	@Produce   json
//	@Security  BearerAuth
//	@Param     id    path      string                true  "recipe id"
//	@Param     body  body      social.RatingRequest  true  "score 1-5"
//	@Success   200   {object}  store.Rating
//	@Failure   400   {object}  map[string]interface{}
//	@Failure   404   {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/rating [put]
func RateHandler(st *store.Store, pub mqx.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		var body RatingRequest
		if err := c.BodyParser(&body); err != nil || body.Score < 1 || body.Score > 5 {
			return kit.BadRequest("score must be between 1 and 5", nil)
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		r, err := st.UpsertRating(ctx, uid, rid, body.Score)
		if err != nil {
			return refError(err, "rate recipe")
		}
		_ = mqx.PublishJSON(ctx, pub, mqx.KeyRatingUpserted, r)
		return kit.OK(c, r)
	}
}

// DeleteRatingHandler withdraws the caller's rating of a recipe.
//
//	@Summary   Delete rating
//	@Tags      social
//	@Security  BearerAuth
//	@Param     id   path  string  true  "recipe id"
//	@Success   204
//	@Failure   404  {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/rating [delete]
func DeleteRatingHandler(st *store.Store, pub mqx.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if err := st.DeleteRating(ctx, uid, rid); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return kit.NotFound("rating not found")
			}
			return kit.InternalError("delete rating failed", err.Error())
		}
		_ = mqx.PublishJSON(ctx, pub, mqx.KeyRatingDeleted, fiber.Map{"user_id": uid, "recipe_id": rid})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AddCommentHandler comments on a recipe.
//
//	@Summary   Comment recipe
//	@Tags      social
//	@Accept    json
//	@Produce   json
//	@Security  BearerAuth
//	@Param     id    path      string                 true  "recipe id"
//	@Param     body  body      social.CommentRequest  true  "comment"
//	@Success   201   {object}  store.Comment
//	@Failure   400   {object}  map[string]interface{}
//	@Failure   404   {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/comments [post]
func AddCommentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		var body CommentRequest
		if err := c.BodyParser(&body); err != nil {
			return kit.BadRequest("invalid body", nil)
		}
		body.Body = strings.TrimSpace(body.Body)
		if body.Body == "" || utf8.RuneCountInString(body.Body) > maxCommentLen {
			return kit.BadRequest("comment must have between 1 and 2000 characters", nil)
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		cm := store.Comment{UserID: uid, RecipeID: rid, Body: body.Body}
		if err := st.AddComment(ctx, &cm); err != nil {
			return refError(err, "add comment")
		}
		return kit.Created(c, cm)
	}
}

// ListCommentsHandler lists a recipe's comments, newest first.
//
//	@Summary   Recipe comments
//	@Tags      social
//	@Produce   json
//	@Param     id      path   string  true   "recipe id"
//	@Param     limit   query  int     false  "page size"  default(20)
//	@Param     offset  query  int     false  "offset"     default(0)
//	@Success   200  {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/comments [get]
func ListCommentsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, err := kit.ParamUUID(c, "id")
		if err != nil {
			return err
		}
		pg, err := kit.ParsePaging(c, "created_at")
		if err != nil {
			return err
		}
		if pg.Sort == "" {
			pg.Sort, pg.Desc = "created_at", true
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		items, err := st.Comments(ctx, rid, pg.Page)
		if err != nil {
			return kit.InternalError("query comments failed", err.Error())
		}
		return kit.List(c, items, pg.Meta(len(items), nil))
	}
}

// DeleteCommentHandler removes one of the caller's comments.
//
//	@Summary   Delete comment
//	@Tags      social
//	@Security  BearerAuth
//	@Param     id   path  string  true  "recipe id"
//	@Param     cid  path  string  true  "comment id"
//	@Success   204
//	@Failure   403  {object}  map[string]interface{}
//	@Failure   404  {object}  map[string]interface{}
//	@Router    /api/v1/recipes/{id}/comments/{cid} [delete]
func DeleteCommentHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, rid, err := caller(c)
		if err != nil {
			return err
		}
		cid, err := kit.ParamUUID(c, "cid")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		switch err := st.DeleteComment(ctx, uid, rid, cid); {
		case errors.Is(err, store.ErrNotFound):
			return kit.NotFound("comment not found")
		case errors.Is(err, store.ErrNotOwner):
			return kit.Forbidden("only the author can delete a comment")
		case err != nil:
			return kit.InternalError("delete comment failed", err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RecommendHandler recommends a recipe to another user.
//
//	@Summary   Recommend recipe
//	@Tags      social
//	@Accept    json
//	@Produce   json
//	@Security  BearerAuth
//	@Param     body  body      social.RecommendationRequest  true  "recommendation"
//	@Success   201   {object}  store.Recommendation
//	@Failure   400   {object}  map[string]interface{}
//	@Failure   404   {object}  map[string]interface{}
//	@Router    /api/v1/recommendations [post]
func RecommendHandler(st *store.Store, pub mqx.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		var body RecommendationRequest
		if err := c.BodyParser(&body); err != nil {
			return kit.BadRequest("invalid body", nil)
		}
		rid, err := uuid.Parse(body.RecipeID)
		if err != nil {
			return kit.BadRequest("invalid recipe_id", body.RecipeID)
		}
		to, err := uuid.Parse(body.ToUserID)
		if err != nil {
			return kit.BadRequest("invalid to_user_id", body.ToUserID)
		}
		if to == uid {
			return kit.BadRequest("cannot recommend to yourself", nil)
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if ok, err := st.UsersExist(ctx, to); err != nil {
			return kit.InternalError("query user failed", err.Error())
		} else if !ok {
			return kit.NotFound("user not found")
		}
		rec := store.Recommendation{FromUserID: uid, ToUserID: to, RecipeID: rid, Message: strings.TrimSpace(body.Message)}
		if err := st.CreateRecommendation(ctx, &rec); err != nil {
			return refError(err, "recommend")
		}
		_ = mqx.PublishJSON(ctx, pub, mqx.KeyRecommendation, rec)
		return kit.Created(c, rec)
	}
}

// ListRecommendationsHandler lists what others recommended to the caller.
//
//	@Summary   My recommendations
//	@Tags      social
//	@Produce   json
//	@Security  BearerAuth
//	@Param     limit   query  int  false  "page size"  default(20)
//	@Param     offset  query  int  false  "offset"     default(0)
//	@Success   200  {object}  map[string]interface{}
//	@Router    /api/v1/users/me/recommendations [get]
func ListRecommendationsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		pg, err := kit.ParsePaging(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		items, err := st.RecommendationsFor(ctx, uid, pg.Page)
		if err != nil {
			return kit.InternalError("query recommendations failed", err.Error())
		}
		return kit.List(c, items, pg.Meta(len(items), nil))
	}
}

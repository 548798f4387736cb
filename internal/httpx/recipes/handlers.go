package recipes

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"planeat-api/internal/agenda"
	"planeat-api/internal/esx"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/logx"
	"planeat-api/internal/mqx"
	"planeat-api/internal/store"
)

var recipesLogger = logx.GetScope("recipes")

var sortFields = []string{"created_at", "title"}

// Search is the optional Elasticsearch index recipes are mirrored into.
type Search struct {
	ES    *esx.Client
	Index string
}

// Doc builds the indexed form of d.
func Doc(d store.RecipeDetail) esx.RecipeDoc {
	return esx.RecipeDoc{
		ID:          d.ID.String(),
		Title:       d.Title,
		Description: d.Description,
		Ingredients: lo.Map(d.Ingredients, func(in store.Ingredient, _ int) string { return in.Name }),
		OwnerID:     d.OwnerUserID.String(),
		CreatedAt:   esx.FormatTime(d.CreatedAt),
	}
}

// CreateRecipeHandler stores a recipe owned by the caller.
//
//	@Summary      Create recipe
//	@Description  Create a recipe with ingredients and steps; indexed for search when configured
//	@Tags         recipes
//	@Accept       json
//	@Produce      json
//	@Security     BearerAuth
//	@Param        recipe  body      recipes.RecipeCreateRequest  true  "recipe"
//	@Success      201     {object}  map[string]interface{}
//	@Failure      400     {object}  map[string]interface{}
//	@Failure      401     {object}  map[string]interface{}
//	@Router       /api/v1/recipes [post]
func CreateRecipeHandler(st *store.Store, pub mqx.Publisher, search Search) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		var body RecipeCreateRequest
		if err := c.BodyParser(&body); err != nil {
			return kit.BadRequest("invalid body", nil)
		}
		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			return kit.BadRequest("title required", nil)
		}
		if _, bad, found := lo.FindIndexOf(body.Ingredients, func(in IngredientInput) bool { return strings.TrimSpace(in.Name) == "" }); found {
			return kit.BadRequest("ingredient name required", bad)
		}

		d := store.RecipeDetail{
			Recipe: agenda.Recipe{Title: body.Title, Description: body.Description, ImageRef: body.ImageRef, OwnerUserID: uid},
			Ingredients: lo.Map(body.Ingredients, func(in IngredientInput, _ int) store.Ingredient {
				return store.Ingredient{Name: strings.TrimSpace(in.Name), Quantity: in.Quantity}
			}),
			Steps: orderedSteps(body.Steps),
		}

		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if err := st.CreateRecipe(ctx, &d); err != nil {
			if errors.Is(err, store.ErrDanglingRef) {
				return kit.Unauthorized("user no longer exists")
			}
			return kit.InternalError("create recipe failed", err.Error())
		}
		_ = mqx.PublishJSON(ctx, pub, mqx.KeyRecipeCreated, d.Recipe)
		if err := esx.IndexRecipe(ctx, search.ES, search.Index, Doc(d)); err != nil {
			recipesLogger.Warn("index recipe failed", zap.String("recipe_id", d.ID.String()), zap.Error(err))
		}
		return kit.Created(c, d)
	}
}

// orderedSteps sorts steps by explicit position; steps without one keep
// their request order after the positioned ones.
func orderedSteps(in []StepInput) []store.Step {
	idx := lo.Range(len(in))
	slices.SortStableFunc(idx, func(a, b int) int {
		pa, pb := in[a].Position, in[b].Position
		switch {
		case pa != nil && pb != nil:
			return *pa - *pb
		case pa != nil:
			return -1
		case pb != nil:
			return 1
		}
		return 0
	})
	return lo.Map(idx, func(i int, _ int) store.Step {
		return store.Step{Title: in[i].Title, Description: in[i].Description}
	})
}

// ListRecipesHandler lists recipes with offset paging.
//
//	@Summary      List recipes
//	@Tags         recipes
//	@Produce      json
//	@Param        owner_id    query  string  false  "owner filter"
//	@Param        q           query  string  false  "title contains (case-insensitive)"
//	@Param        limit       query  int     false  "page size"  default(20)
//	@Param        offset      query  int     false  "offset"     default(0)
//	@Param        sort        query  string  false  "created_at|title[:asc|desc]"
//	@Param        with_total  query  bool    false  "return total"  default(false)
//	@Success      200  {object}  map[string]interface{}
//	@Failure      400  {object}  map[string]interface{}
//	@Router       /api/v1/recipes [get]
func ListRecipesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg, err := kit.ParsePaging(c, sortFields...)
		if err != nil {
			return err
		}
		owner, err := kit.QueryUUID(c, "owner_id")
		if err != nil {
			return err
		}
		f := store.RecipeFilter{OwnerID: owner, Title: strings.TrimSpace(c.Query("q"))}
		if pg.Sort == "" {
			pg.Sort, pg.Desc = "created_at", true
		}

		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		items, err := st.ListRecipes(ctx, f, pg.Page)
		if err != nil {
			return kit.InternalError("query recipes failed", err.Error())
		}
		var total *int
		if pg.WithTotal {
			if n, err := st.CountRecipes(ctx, f); err == nil {
				total = &n
			}
		}
		return kit.List(c, items, pg.Meta(len(items), total))
	}
}

// GetRecipeHandler returns a recipe with ingredients, steps and rating.
//
//	@Summary      Get recipe
//	@Tags         recipes
//	@Produce      json
//	@Param        id   path      string  true  "recipe id"
//	@Success      200  {object}  map[string]interface{}
//	@Failure      404  {object}  map[string]interface{}
//	@Router       /api/v1/recipes/{id} [get]
func GetRecipeHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := kit.ParamUUID(c, "id")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		d, err := st.RecipeDetail(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return kit.NotFound("recipe not found")
		}
		if err != nil {
			return kit.InternalError("query recipe failed", err.Error())
		}
		return kit.OK(c, d)
	}
}

// DeleteRecipeHandler deletes one of the caller's recipes.
//
//	@Summary      Delete recipe
//	@Tags         recipes
//	@Security     BearerAuth
//	@Param        id   path  string  true  "recipe id"
//	@Success      204
//	@Failure      403  {object}  map[string]interface{}
//	@Failure      404  {object}  map[string]interface{}
//	@Router       /api/v1/recipes/{id} [delete]
func DeleteRecipeHandler(st *store.Store, pub mqx.Publisher, search Search) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		id, err := kit.ParamUUID(c, "id")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		r, err := st.RecipeByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return kit.NotFound("recipe not found")
		}
		if err != nil {
			return kit.InternalError("query recipe failed", err.Error())
		}
		if r.OwnerUserID != uid {
			return kit.Forbidden("only the owner can delete a recipe")
		}
		if err := st.DeleteRecipe(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return kit.InternalError("delete recipe failed", err.Error())
		}
		_ = mqx.PublishJSON(ctx, pub, mqx.KeyRecipeDeleted, r)
		if err := esx.DeleteRecipe(ctx, search.ES, search.Index, id.String()); err != nil {
			recipesLogger.Warn("unindex recipe failed", zap.String("recipe_id", id.String()), zap.Error(err))
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchRecipesHandler runs a full-text search over indexed recipes.
//
//	@Summary      Search recipes
//	@Description  Full-text search over title, ingredients and description; empty when search is not configured
//	@Tags         recipes
//	@Produce      json
//	@Param        q       query  string  true   "query"
//	@Param        limit   query  int     false  "page size"  default(20)
//	@Param        offset  query  int     false  "offset"     default(0)
//	@Success      200  {object}  esx.SearchResult
//	@Failure      400  {object}  map[string]interface{}
//	@Router       /api/v1/search/recipes [get]
func SearchRecipesHandler(search Search) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return kit.BadRequest("q required", nil)
		}
		from := lo.Max([]int{0, c.QueryInt("offset", 0)})
		size := lo.Clamp(c.QueryInt("limit", 20), 1, 100)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		res, err := esx.SearchRecipes(ctx, search.ES, search.Index, q, from, size)
		if err != nil {
			return kit.InternalError("es search failed", err.Error())
		}
		return kit.OK(c, res)
	}
}

package store

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"planeat-api/internal/agenda"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	ID       uuid.UUID `json:"id"`
	RecipeID uuid.UUID `json:"recipe_id"`
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity"`
}

// Step is one preparation step of a recipe.
type Step struct {
	ID          uuid.UUID `json:"id"`
	RecipeID    uuid.UUID `json:"recipe_id"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// RatingSummary aggregates the scores of a recipe.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RecipeDetail is a recipe with its ingredients, steps and rating.
type RecipeDetail struct {
	agenda.Recipe
	Ingredients []Ingredient  `json:"ingredients"`
	Steps       []Step        `json:"steps"`
	Rating      RatingSummary `json:"rating"`
}

// RecipeFilter narrows ListRecipes and CountRecipes.
type RecipeFilter struct {
	OwnerID *uuid.UUID
	Title   string
	// Before keeps recipes created at or before the given time.
	Before *time.Time
}

var (
	recipeColumns     = []string{"id", "title", "description", "image_ref", "owner_id", "created_at"}
	recipeSortColumns = map[string]bool{"id": true, "title": true, "created_at": true}
)

// recipeSelect returns the recipe columns for scanning into agenda.Recipe,
// reading owner_id as owner_user_id. col qualifies each column name.
func recipeSelect(col func(string) string) []string {
	out := make([]string, 0, len(recipeColumns))
	for _, c := range recipeColumns {
		if c == "owner_id" {
			out = append(out, entsql.As(col(c), "owner_user_id"))
			continue
		}
		out = append(out, col(c))
	}
	return out
}

func bareColumn(c string) string { return c }

// CreateRecipe stores the recipe with its ingredients and steps in one
// transaction. Positions follow slice order.
func (s *Store) CreateRecipe(ctx context.Context, d *RecipeDetail) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	return s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.exec(ctx, tx.b().Insert("recipes").
			Columns(recipeColumns...).
			Values(d.ID, d.Title, d.Description, d.ImageRef, d.OwnerUserID, d.CreatedAt))
		if err != nil {
			return err
		}
		if len(d.Ingredients) > 0 {
			ins := tx.b().Insert("ingredients").Columns("id", "recipe_id", "position", "name", "quantity")
			for i := range d.Ingredients {
				in := &d.Ingredients[i]
				in.ID, in.RecipeID, in.Position = uuid.New(), d.ID, i
				ins.Values(in.ID, in.RecipeID, in.Position, in.Name, in.Quantity)
			}
			if _, err := tx.exec(ctx, ins); err != nil {
				return err
			}
		}
		if len(d.Steps) > 0 {
			ins := tx.b().Insert("recipe_steps").Columns("id", "recipe_id", "position", "title", "description")
			for i := range d.Steps {
				st := &d.Steps[i]
				st.ID, st.RecipeID, st.Position = uuid.New(), d.ID, i
				ins.Values(st.ID, st.RecipeID, st.Position, st.Title, st.Description)
			}
			if _, err := tx.exec(ctx, ins); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RecipeByID(ctx context.Context, id uuid.UUID) (agenda.Recipe, error) {
	return one[agenda.Recipe](ctx, s, s.b().Select(recipeSelect(bareColumn)...).From(entsql.Table("recipes")).Where(entsql.EQ("id", id)))
}

// RecipeDetail loads a recipe with ingredients, steps and rating summary.
func (s *Store) RecipeDetail(ctx context.Context, id uuid.UUID) (RecipeDetail, error) {
	r, err := s.RecipeByID(ctx, id)
	if err != nil {
		return RecipeDetail{}, err
	}
	d := RecipeDetail{Recipe: r, Ingredients: []Ingredient{}, Steps: []Step{}}
	if err := s.all(ctx, s.b().Select("id", "recipe_id", "position", "name", "quantity").
		From(entsql.Table("ingredients")).
		Where(entsql.EQ("recipe_id", id)).
		OrderBy(entsql.Asc("position")), &d.Ingredients); err != nil {
		return d, err
	}
	if err := s.all(ctx, s.b().Select("id", "recipe_id", "position", "title", "description").
		From(entsql.Table("recipe_steps")).
		Where(entsql.EQ("recipe_id", id)).
		OrderBy(entsql.Asc("position")), &d.Steps); err != nil {
		return d, err
	}
	d.Rating, err = s.RatingSummary(ctx, id)
	return d, err
}

// RecipesByIDs returns the recipes among ids that exist, in no particular order.
func (s *Store) RecipesByIDs(ctx context.Context, ids []uuid.UUID) ([]agenda.Recipe, error) {
	out := []agenda.Recipe{}
	if len(ids) == 0 {
		return out, nil
	}
	for _, chunk := range lo.Chunk(uniq(ids), 500) {
		var part []agenda.Recipe
		if err := s.all(ctx, s.b().Select(recipeSelect(bareColumn)...).
			From(entsql.Table("recipes")).
			Where(entsql.In("id", anys(chunk)...)), &part); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func recipePredicate(f RecipeFilter) *entsql.Predicate {
	var ps []*entsql.Predicate
	if f.OwnerID != nil {
		ps = append(ps, entsql.EQ("owner_id", *f.OwnerID))
	}
	if f.Title != "" {
		ps = append(ps, entsql.ContainsFold("title", f.Title))
	}
	if f.Before != nil {
		ps = append(ps, entsql.LTE("created_at", *f.Before))
	}
	if len(ps) == 0 {
		return nil
	}
	return entsql.And(ps...)
}

// ListRecipes returns one page of recipes matching f.
func (s *Store) ListRecipes(ctx context.Context, f RecipeFilter, p Page) ([]agenda.Recipe, error) {
	sel := s.b().Select(recipeSelect(bareColumn)...).From(entsql.Table("recipes"))
	if pred := recipePredicate(f); pred != nil {
		sel.Where(pred)
	}
	p.apply(sel, recipeSortColumns, "created_at")
	out := []agenda.Recipe{}
	if err := s.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountRecipes counts the recipes matching f.
func (s *Store) CountRecipes(ctx context.Context, f RecipeFilter) (int, error) {
	sel := s.b().Select(entsql.Count("*")).From(entsql.Table("recipes"))
	if pred := recipePredicate(f); pred != nil {
		sel.Where(pred)
	}
	return s.count(ctx, sel)
}

// DeleteRecipe removes a recipe. Its ingredients, steps, schedule entries and
// social rows go with it.
func (s *Store) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	n, err := s.exec(ctx, s.b().Delete("recipes").Where(entsql.EQ("id", id)))
	if err != nil {
		return err
	}
	return lo.Ternary(n == 0, ErrNotFound, nil)
}

// RatingSummary returns the average score and number of ratings of a recipe.
func (s *Store) RatingSummary(ctx context.Context, recipeID uuid.UUID) (RatingSummary, error) {
	type row struct {
		Average sql.NullFloat64 `sql:"average"`
		Count   int             `sql:"count"`
	}
	r, err := one[row](ctx, s, s.b().
		Select(entsql.As(entsql.Avg("score"), "average"), entsql.As(entsql.Count("*"), "count")).
		From(entsql.Table("ratings")).
		Where(entsql.EQ("recipe_id", recipeID)))
	if err != nil {
		return RatingSummary{}, err
	}
	return RatingSummary{Average: r.Average.Float64, Count: r.Count}, nil
}

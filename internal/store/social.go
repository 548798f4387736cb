package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"planeat-api/internal/agenda"
)

// Rating is a user's score for a recipe.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a note a user left on a recipe.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Recommendation is a recipe suggested by one user to another.
type Recommendation struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddFavorite marks recipeID as a favorite of userID. Repeating it is a no-op.
func (s *Store) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	_, err := s.exec(ctx, s.b().Insert("favorites").
		Columns("id", "user_id", "recipe_id", "created_at").
		Values(uuid.New(), userID, recipeID, s.now()).
		OnConflict(entsql.ConflictColumns("user_id", "recipe_id"), entsql.DoNothing()))
	return err
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	n, err := s.exec(ctx, s.b().Delete("favorites").
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("recipe_id", recipeID))))
	if err != nil {
		return err
	}
	return lo.Ternary(n == 0, ErrNotFound, nil)
}

// Favorites returns the user's favorite recipes, most recently marked first.
func (s *Store) Favorites(ctx context.Context, userID uuid.UUID) ([]agenda.Recipe, error) {
	b := s.b()
	r, f := b.Table("recipes"), b.Table("favorites")
	sel := b.Select(recipeSelect(r.C)...).
		From(r).
		Join(f).On(r.C("id"), f.C("recipe_id")).
		Where(entsql.EQ(f.C("user_id"), userID)).
		OrderBy(entsql.Desc(f.C("created_at")))
	out := []agenda.Recipe{}
	if err := s.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertRating stores the user's score for a recipe, replacing a previous one.
func (s *Store) UpsertRating(ctx context.Context, userID, recipeID uuid.UUID, score int) (Rating, error) {
	now := s.now()
	_, err := s.exec(ctx, s.b().Insert("ratings").
		Columns("id", "user_id", "recipe_id", "score", "created_at", "updated_at").
		Values(uuid.New(), userID, recipeID, score, now, now).
		OnConflict(
			entsql.ConflictColumns("user_id", "recipe_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("score")
				u.SetExcluded("updated_at")
			}),
		))
	if err != nil {
		return Rating{}, err
	}
	return one[Rating](ctx, s, s.b().Select("id", "user_id", "recipe_id", "score", "created_at", "updated_at").
		From(entsql.Table("ratings")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("recipe_id", recipeID))))
}

// DeleteRating removes the user's rating of a recipe.
func (s *Store) DeleteRating(ctx context.Context, userID, recipeID uuid.UUID) error {
	n, err := s.exec(ctx, s.b().Delete("ratings").
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("recipe_id", recipeID))))
	if err != nil {
		return err
	}
	return lo.Ternary(n == 0, ErrNotFound, nil)
}

// AddComment inserts c, filling ID and CreatedAt.
func (s *Store) AddComment(ctx context.Context, c *Comment) error {
	c.ID, c.CreatedAt = uuid.New(), s.now()
	_, err := s.exec(ctx, s.b().Insert("comments").
		Columns("id", "user_id", "recipe_id", "body", "created_at").
		Values(c.ID, c.UserID, c.RecipeID, c.Body, c.CreatedAt))
	return err
}

// Comments returns one page of a recipe's comments, oldest first.
func (s *Store) Comments(ctx context.Context, recipeID uuid.UUID, p Page) ([]Comment, error) {
	sel := s.b().Select("id", "user_id", "recipe_id", "body", "created_at").
		From(entsql.Table("comments")).
		Where(entsql.EQ("recipe_id", recipeID))
	p.apply(sel, map[string]bool{"created_at": true}, "created_at")
	out := []Comment{}
	if err := s.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteComment removes commentID from recipeID. Only its author may delete
// it: ErrNotFound if the comment is not on that recipe, ErrNotOwner if
// userID did not write it.
func (s *Store) DeleteComment(ctx context.Context, userID, recipeID, commentID uuid.UUID) error {
	return s.WithTx(ctx, func(tx *Store) error {
		c, err := one[Comment](ctx, tx, tx.b().Select("id", "user_id", "recipe_id", "body", "created_at").
			From(entsql.Table("comments")).
			Where(entsql.And(entsql.EQ("id", commentID), entsql.EQ("recipe_id", recipeID))))
		if err != nil {
			return err
		}
		if c.UserID != userID {
			return ErrNotOwner
		}
		_, err = tx.exec(ctx, tx.b().Delete("comments").Where(entsql.EQ("id", commentID)))
		return err
	})
}

// CreateRecommendation inserts r, filling ID and CreatedAt.
func (s *Store) CreateRecommendation(ctx context.Context, r *Recommendation) error {
	r.ID, r.CreatedAt = uuid.New(), s.now()
	_, err := s.exec(ctx, s.b().Insert("recommendations").
		Columns("id", "from_user_id", "to_user_id", "recipe_id", "message", "created_at").
		Values(r.ID, r.FromUserID, r.ToUserID, r.RecipeID, r.Message, r.CreatedAt))
	return err
}

// RecommendationsFor returns what others recommended to userID, newest first.
func (s *Store) RecommendationsFor(ctx context.Context, userID uuid.UUID, p Page) ([]Recommendation, error) {
	sel := s.b().Select("id", "from_user_id", "to_user_id", "recipe_id", "message", "created_at").
		From(entsql.Table("recommendations")).
		Where(entsql.EQ("to_user_id", userID))
	p.Desc = true
	p.apply(sel, map[string]bool{"created_at": true}, "created_at")
	out := []Recommendation{}
	if err := s.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

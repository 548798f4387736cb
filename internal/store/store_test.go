package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
	"planeat-api/internal/db/dbtest"
	"planeat-api/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(dbtest.Open(t))
}

func mkUser(t *testing.T, s *store.Store, name string) store.User {
	t.Helper()
	u := store.User{Username: name, DisplayName: name, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func mkRecipe(t *testing.T, s *store.Store, owner uuid.UUID, title string) store.RecipeDetail {
	t.Helper()
	d := store.RecipeDetail{Recipe: agenda.Recipe{Title: title, OwnerUserID: owner}}
	require.NoError(t, s.CreateRecipe(context.Background(), &d))
	return d
}

func TestUsers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ana := mkUser(t, s, "ana")

	got, err := s.UserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)
	assert.Equal(t, "x", got.PasswordHash)

	dup := store.User{Username: "ana", PasswordHash: "y"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), store.ErrConflict)

	_, err = s.UserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	ok, err := s.UsersExist(ctx, ana.ID, ana.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.UsersExist(ctx, ana.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecipes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ana := mkUser(t, s, "ana")
	beto := mkUser(t, s, "beto")

	tacos := store.RecipeDetail{
		Recipe:      agenda.Recipe{Title: "Tacos al pastor", Description: "Con piña", OwnerUserID: ana.ID},
		Ingredients: []store.Ingredient{{Name: "Tortilla", Quantity: "12"}, {Name: "Cerdo", Quantity: "1kg"}},
		Steps:       []store.Step{{Title: "Marinar"}, {Title: "Asar"}},
	}
	require.NoError(t, s.CreateRecipe(ctx, &tacos))
	mkRecipe(t, s, beto.ID, "Pozole")
	mkRecipe(t, s, ana.ID, "Taquitos dorados")

	d, err := s.RecipeDetail(ctx, tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tacos al pastor", d.Title)
	assert.Equal(t, ana.ID, d.OwnerUserID)
	require.Len(t, d.Ingredients, 2)
	assert.Equal(t, "Tortilla", d.Ingredients[0].Name)
	assert.Equal(t, 1, d.Ingredients[1].Position)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, "Asar", d.Steps[1].Title)
	assert.Zero(t, d.Rating.Count)

	list, err := s.ListRecipes(ctx, store.RecipeFilter{Title: "TAC"}, store.Page{Limit: 10, Sort: "title"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tacos.ID, list[0].ID)
	assert.Equal(t, ana.ID, list[0].OwnerUserID)

	n, err := s.CountRecipes(ctx, store.RecipeFilter{OwnerID: &ana.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := s.ListRecipes(ctx, store.RecipeFilter{}, store.Page{Limit: 2, Offset: 2, Sort: "title"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Taquitos dorados", page[0].Title)

	found, err := s.RecipesByIDs(ctx, []uuid.UUID{tacos.ID, uuid.New(), tacos.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ana.ID, found[0].OwnerUserID)

	require.NoError(t, s.DeleteRecipe(ctx, tacos.ID))
	assert.ErrorIs(t, s.DeleteRecipe(ctx, tacos.ID), store.ErrNotFound)
	_, err = s.RecipeDetail(ctx, tacos.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsertDay_FirstWriterWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := agenda.CalendarDay{ID: uuid.New(), Year: 2024, Month: 6, Day: 1}
	got, created, err := s.InsertDay(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, got)

	second := agenda.CalendarDay{ID: uuid.New(), Year: 2024, Month: 6, Day: 1}
	got, created, err = s.InsertDay(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, got.ID)

	_, _, err = s.InsertDay(ctx, agenda.CalendarDay{ID: uuid.New(), Year: 2024, Month: 6, Day: 20})
	require.NoError(t, err)
	days, err := s.DaysInMonth(ctx, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 20}, []int{days[0].Day, days[1].Day})

	all, err := s.AllDays(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEntries(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ana := mkUser(t, s, "ana")
	beto := mkUser(t, s, "beto")
	tacos := mkRecipe(t, s, ana.ID, "Tacos")
	day, _, err := s.InsertDay(ctx, agenda.CalendarDay{ID: uuid.New(), Year: 2024, Month: 6, Day: 1})
	require.NoError(t, err)

	e := agenda.ScheduleEntry{UserID: ana.ID, RecipeID: tacos.ID, CalendarDayID: day.ID, MealType: agenda.Lunch}
	require.NoError(t, s.CreateEntry(ctx, &e))

	got, err := s.EntryByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, agenda.Lunch, got.MealType)

	list, err := s.EntriesForUserOnDays(ctx, ana.ID, []uuid.UUID{day.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)

	none, err := s.EntriesForUserOnDays(ctx, beto.ID, []uuid.UUID{day.ID})
	require.NoError(t, err)
	assert.Empty(t, none)

	dangling := agenda.ScheduleEntry{UserID: ana.ID, RecipeID: uuid.New(), CalendarDayID: day.ID, MealType: agenda.Dinner}
	assert.ErrorIs(t, s.CreateEntry(ctx, &dangling), store.ErrDanglingRef)

	assert.ErrorIs(t, s.DeleteEntry(ctx, beto.ID, e.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteEntry(ctx, ana.ID, e.ID))

	all, err := s.AllEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSocial(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ana := mkUser(t, s, "ana")
	beto := mkUser(t, s, "beto")
	tacos := mkRecipe(t, s, ana.ID, "Tacos")
	pozole := mkRecipe(t, s, ana.ID, "Pozole")

	require.NoError(t, s.AddFavorite(ctx, beto.ID, tacos.ID))
	require.NoError(t, s.AddFavorite(ctx, beto.ID, tacos.ID))
	require.NoError(t, s.AddFavorite(ctx, beto.ID, pozole.ID))
	favs, err := s.Favorites(ctx, beto.ID)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.ElementsMatch(t, []uuid.UUID{tacos.ID, pozole.ID}, []uuid.UUID{favs[0].ID, favs[1].ID})
	assert.Equal(t, ana.ID, favs[0].OwnerUserID)
	assert.Equal(t, ana.ID, favs[1].OwnerUserID)
	require.NoError(t, s.RemoveFavorite(ctx, beto.ID, pozole.ID))
	assert.ErrorIs(t, s.RemoveFavorite(ctx, beto.ID, pozole.ID), store.ErrNotFound)

	r, err := s.UpsertRating(ctx, beto.ID, tacos.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Score)
	r2, err := s.UpsertRating(ctx, beto.ID, tacos.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, r.ID, r2.ID)
	assert.Equal(t, 5, r2.Score)
	_, err = s.UpsertRating(ctx, ana.ID, tacos.ID, 4)
	require.NoError(t, err)
	sum, err := s.RatingSummary(ctx, tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.InDelta(t, 4.5, sum.Average, 0.001)

	c := store.Comment{UserID: beto.ID, RecipeID: tacos.ID, Body: "¡Deliciosos!"}
	require.NoError(t, s.AddComment(ctx, &c))
	comments, err := s.Comments(ctx, tacos.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "¡Deliciosos!", comments[0].Body)

	assert.ErrorIs(t, s.DeleteComment(ctx, ana.ID, tacos.ID, c.ID), store.ErrNotOwner)
	assert.ErrorIs(t, s.DeleteComment(ctx, beto.ID, pozole.ID, c.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteComment(ctx, beto.ID, tacos.ID, c.ID))
	comments, err = s.Comments(ctx, tacos.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, s.DeleteRating(ctx, beto.ID, tacos.ID))
	assert.ErrorIs(t, s.DeleteRating(ctx, beto.ID, tacos.ID), store.ErrNotFound)
	sum, err = s.RatingSummary(ctx, tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Count)

	rec := store.Recommendation{FromUserID: ana.ID, ToUserID: beto.ID, RecipeID: pozole.ID, Message: "pruébalo"}
	require.NoError(t, s.CreateRecommendation(ctx, &rec))
	recs, err := s.RecommendationsFor(ctx, beto.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, pozole.ID, recs[0].RecipeID)
}

func TestWithTx_RollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	err := s.WithTx(ctx, func(tx *store.Store) error {
		u := store.User{Username: "ghost", PasswordHash: "x"}
		require.NoError(t, tx.CreateUser(ctx, &u))
		return store.ErrConflict
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = s.UserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

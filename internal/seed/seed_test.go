package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
	"planeat-api/internal/db/dbtest"
	"planeat-api/internal/planner"
	"planeat-api/internal/store"
)

const demo = `
users:
  - username: ana
    email: ana@example.com
    password: tortilla-2024
recipes:
  - title: Tacos
    owner: ana
    ingredients:
      - {name: tortilla, quantity: "4"}
      - {name: carne, quantity: 200g}
    steps:
      - {title: Calentar, description: Calentar las tortillas}
schedule:
  - {user: ana, recipe: Tacos, date: 2024-06-01, meal_type: Comida}
  - {user: ana, recipe: Tacos, date: 2024-06-03, meal_type: dinner}
`

func TestApply(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.Open(t))
	svc := planner.New(st)

	f, err := Decode(strings.NewReader(demo))
	require.NoError(t, err)
	res, err := Apply(ctx, st, svc, f)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1, Recipes: 1, Scheduled: 2}, res)

	ana, err := st.UserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", ana.DisplayName)

	days, err := svc.MonthHighlights(ctx, ana.ID, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, days)

	got, err := svc.DayAgenda(ctx, ana.ID, agenda.Date{Year: 2024, Month: 6, Day: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, agenda.Dinner, got[0].MealType)

	// users are reused on a second run
	again, err := Apply(ctx, st, svc, &File{Users: f.Users})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Users)
}

func TestApply_UnknownRecipe(t *testing.T) {
	st := store.New(dbtest.Open(t))
	f, err := Decode(strings.NewReader(`
users: [{username: ana, password: tortilla-2024}]
schedule: [{user: ana, recipe: Mole, date: 2024-06-01, meal_type: Cena}]
`))
	require.NoError(t, err)
	_, err = Apply(context.Background(), st, planner.New(st), f)
	require.ErrorContains(t, err, `unknown recipe "Mole"`)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("users: [{username: ana, nickname: a}]"))
	require.Error(t, err)
}

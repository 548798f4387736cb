package social

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
	"planeat-api/internal/db/dbtest"
	"planeat-api/internal/httpx/kit/testutil"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/mqx"
	"planeat-api/internal/store"
)

type env struct {
	st    *store.Store
	pub   *mqx.Memory
	ana   store.User
	beto  store.User
	tacos store.RecipeDetail
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{st: store.New(dbtest.Open(t)), pub: &mqx.Memory{}}
	e.ana = store.User{Username: "ana", PasswordHash: "x"}
	require.NoError(t, e.st.CreateUser(ctx, &e.ana))
	e.beto = store.User{Username: "beto", PasswordHash: "x"}
	require.NoError(t, e.st.CreateUser(ctx, &e.beto))
	e.tacos = store.RecipeDetail{Recipe: agenda.Recipe{Title: "Tacos", OwnerUserID: e.ana.ID}}
	require.NoError(t, e.st.CreateRecipe(ctx, &e.tacos))
	return e
}

func (e *env) app(as uuid.UUID) *fiber.App {
	return testutil.NewApp(
		testutil.AsUser(as),
		func(app *fiber.App) {
			app.Put("/recipes/:id/favorite", mw.RequireUser(), AddFavoriteHandler(e.st))
			app.Delete("/recipes/:id/favorite", mw.RequireUser(), RemoveFavoriteHandler(e.st))
			app.Put("/recipes/:id/rating", mw.RequireUser(), RateHandler(e.st, e.pub))
			app.Delete("/recipes/:id/rating", mw.RequireUser(), DeleteRatingHandler(e.st, e.pub))
			app.Post("/recipes/:id/comments", mw.RequireUser(), AddCommentHandler(e.st))
			app.Get("/recipes/:id/comments", ListCommentsHandler(e.st))
			app.Delete("/recipes/:id/comments/:cid", mw.RequireUser(), DeleteCommentHandler(e.st))
			app.Post("/recommendations", mw.RequireUser(), RecommendHandler(e.st, e.pub))
			app.Get("/users/me/favorites", mw.RequireUser(), ListFavoritesHandler(e.st))
			app.Get("/users/me/recommendations", mw.RequireUser(), ListRecommendationsHandler(e.st))
		},
	)
}

func do(t *testing.T, app *fiber.App, method, path string, v any) *http.Response {
	t.Helper()
	b := []byte{}
	if v != nil {
		b, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func TestFavorites(t *testing.T) {
	e := setup(t)
	app := e.app(e.beto.ID)
	path := "/recipes/" + e.tacos.ID.String() + "/favorite"

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodPut, path, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodPut, path, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPut, "/recipes/"+uuid.NewString()+"/favorite", nil).StatusCode)

	res := do(t, app, http.MethodGet, "/users/me/favorites", nil)
	var body struct {
		Data []agenda.Recipe `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Tacos", body.Data[0].Title)

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, path, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodDelete, path, nil).StatusCode)
}

func TestRating_Upserts(t *testing.T) {
	e := setup(t)
	path := "/recipes/" + e.tacos.ID.String() + "/rating"

	assert.Equal(t, http.StatusOK, do(t, e.app(e.beto.ID), http.MethodPut, path, RatingRequest{Score: 2}).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, e.app(e.beto.ID), http.MethodPut, path, RatingRequest{Score: 5}).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, e.app(e.ana.ID), http.MethodPut, path, RatingRequest{Score: 4}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, e.app(e.ana.ID), http.MethodPut, path, RatingRequest{Score: 6}).StatusCode)

	sum, err := e.st.RatingSummary(context.Background(), e.tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.InDelta(t, 4.5, sum.Average, 0.001)
	assert.Equal(t, []string{mqx.KeyRatingUpserted, mqx.KeyRatingUpserted, mqx.KeyRatingUpserted}, e.pub.Keys())
}

func TestRating_Delete(t *testing.T) {
	e := setup(t)
	path := "/recipes/" + e.tacos.ID.String() + "/rating"

	require.Equal(t, http.StatusOK, do(t, e.app(e.beto.ID), http.MethodPut, path, RatingRequest{Score: 2}).StatusCode)
	require.Equal(t, http.StatusOK, do(t, e.app(e.ana.ID), http.MethodPut, path, RatingRequest{Score: 4}).StatusCode)

	assert.Equal(t, http.StatusNoContent, do(t, e.app(e.beto.ID), http.MethodDelete, path, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.beto.ID), http.MethodDelete, path, nil).StatusCode)

	sum, err := e.st.RatingSummary(context.Background(), e.tacos.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Count)
	assert.InDelta(t, 4.0, sum.Average, 0.001)
	assert.Equal(t, []string{mqx.KeyRatingUpserted, mqx.KeyRatingUpserted, mqx.KeyRatingDeleted}, e.pub.Keys())
}

func TestComments_DeleteOwnOnly(t *testing.T) {
	e := setup(t)
	path := "/recipes/" + e.tacos.ID.String() + "/comments"

	res := do(t, e.app(e.beto.ID), http.MethodPost, path, CommentRequest{Body: "muy picante"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created struct {
		Data store.Comment `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	one := path + "/" + created.Data.ID.String()

	assert.Equal(t, http.StatusForbidden, do(t, e.app(e.ana.ID), http.MethodDelete, one, nil).StatusCode)
	other := "/recipes/" + uuid.NewString() + "/comments/" + created.Data.ID.String()
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.beto.ID), http.MethodDelete, other, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, e.app(e.beto.ID), http.MethodDelete, path+"/nope", nil).StatusCode)

	assert.Equal(t, http.StatusNoContent, do(t, e.app(e.beto.ID), http.MethodDelete, one, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.beto.ID), http.MethodDelete, one, nil).StatusCode)

	left, err := e.st.Comments(context.Background(), e.tacos.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestComments_NewestFirst(t *testing.T) {
	e := setup(t)
	app := e.app(e.beto.ID)
	path := "/recipes/" + e.tacos.ID.String() + "/comments"

	for _, b := range []string{"primero", "segundo"} {
		require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, path, CommentRequest{Body: b}).StatusCode)
	}
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, path, CommentRequest{Body: "   "}).StatusCode)

	res := do(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body struct {
		Data []store.Comment `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "segundo", body.Data[0].Body)
}

func TestRecommendations(t *testing.T) {
	e := setup(t)
	res := do(t, e.app(e.ana.ID), http.MethodPost, "/recommendations", RecommendationRequest{
		RecipeID: e.tacos.ID.String(), ToUserID: e.beto.ID.String(), Message: "pruébalo",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, []string{mqx.KeyRecommendation}, e.pub.Keys())

	assert.Equal(t, http.StatusBadRequest, do(t, e.app(e.ana.ID), http.MethodPost, "/recommendations", RecommendationRequest{
		RecipeID: e.tacos.ID.String(), ToUserID: e.ana.ID.String(),
	}).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.ana.ID), http.MethodPost, "/recommendations", RecommendationRequest{
		RecipeID: e.tacos.ID.String(), ToUserID: uuid.NewString(),
	}).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.ana.ID), http.MethodPost, "/recommendations", RecommendationRequest{
		RecipeID: uuid.NewString(), ToUserID: e.beto.ID.String(),
	}).StatusCode)

	res = do(t, e.app(e.beto.ID), http.MethodGet, "/users/me/recommendations", nil)
	var body struct {
		Data []store.Recommendation `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "pruébalo", body.Data[0].Message)
}

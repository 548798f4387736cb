package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
	"planeat-api/internal/db/dbtest"
	"planeat-api/internal/esx"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/kit/testutil"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/mqx"
	"planeat-api/internal/store"
)

type esRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *esRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func fakeSearch(t *testing.T) (Search, *esRecorder) {
	t.Helper()
	rec := &esRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.calls = append(rec.calls, r.Method+" "+r.URL.Path)
		rec.mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost || r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_score":1.5,"_source":{"id":"x","title":"Tacos"}}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	es, err := es8.NewClient(es8.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return Search{ES: es, Index: "recipes"}, rec
}

type env struct {
	st     *store.Store
	pub    *mqx.Memory
	search Search
	es     *esRecorder
	ana    store.User
	beto   store.User
}

func setup(t *testing.T) *env {
	t.Helper()
	e := &env{st: store.New(dbtest.Open(t)), pub: &mqx.Memory{}}
	e.search, e.es = fakeSearch(t)
	e.ana = store.User{Username: "ana", PasswordHash: "x"}
	require.NoError(t, e.st.CreateUser(context.Background(), &e.ana))
	e.beto = store.User{Username: "beto", PasswordHash: "x"}
	require.NoError(t, e.st.CreateUser(context.Background(), &e.beto))
	return e
}

func (e *env) app(as uuid.UUID) *fiber.App {
	return testutil.NewApp(
		testutil.AsUser(as),
		func(app *fiber.App) {
			app.Post("/recipes", mw.RequireUser(), CreateRecipeHandler(e.st, e.pub, e.search))
			app.Get("/recipes", ListRecipesHandler(e.st))
			app.Get("/recipes/:id", GetRecipeHandler(e.st))
			app.Delete("/recipes/:id", mw.RequireUser(), DeleteRecipeHandler(e.st, e.pub, e.search))
			app.Get("/search/recipes", SearchRecipesHandler(e.search))
		},
	)
}

func do(t *testing.T, app *fiber.App, method, path string, v any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func TestCreateAndGetRecipe(t *testing.T) {
	e := setup(t)
	app := e.app(e.ana.ID)

	two, one := 2, 1
	res := do(t, app, http.MethodPost, "/recipes", RecipeCreateRequest{
		Title:       "Tacos al pastor",
		Ingredients: []IngredientInput{{Name: "Tortilla", Quantity: "12"}, {Name: "Cerdo", Quantity: "1kg"}},
		Steps:       []StepInput{{Position: &two, Title: "Asar"}, {Title: "Servir"}, {Position: &one, Title: "Marinar"}},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created struct {
		Data store.RecipeDetail `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, e.ana.ID, created.Data.OwnerUserID)

	assert.Equal(t, []string{mqx.KeyRecipeCreated}, e.pub.Keys())
	assert.Contains(t, e.es.seen(), "PUT /recipes/_doc/"+created.Data.ID.String())

	res = do(t, app, http.MethodGet, "/recipes/"+created.Data.ID.String(), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got struct {
		Data store.RecipeDetail `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Len(t, got.Data.Steps, 3)
	assert.Equal(t, []string{"Marinar", "Asar", "Servir"},
		[]string{got.Data.Steps[0].Title, got.Data.Steps[1].Title, got.Data.Steps[2].Title})
	assert.Len(t, got.Data.Ingredients, 2)

	res = do(t, app, http.MethodPost, "/recipes", RecipeCreateRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestListRecipes(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for _, r := range []struct {
		owner uuid.UUID
		title string
	}{{e.ana.ID, "Tacos"}, {e.ana.ID, "Taquitos"}, {e.beto.ID, "Pozole"}} {
		d := store.RecipeDetail{Recipe: agenda.Recipe{Title: r.title, OwnerUserID: r.owner}}
		require.NoError(t, e.st.CreateRecipe(ctx, &d))
	}
	app := e.app(e.ana.ID)

	res := do(t, app, http.MethodGet, "/recipes?q=taq&with_total=true", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body struct {
		Data []agenda.Recipe `json:"data"`
		Meta kit.PageMeta    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Taquitos", body.Data[0].Title)
	require.NotNil(t, body.Meta.Total)
	assert.Equal(t, 1, *body.Meta.Total)

	res = do(t, app, http.MethodGet, "/recipes?owner_id="+e.ana.ID.String()+"&sort=title&limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body.Data = nil
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Taquitos", body.Data[0].Title)

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/recipes?owner_id=nope", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/recipes?sort=owner_id", nil).StatusCode)
}

func TestDeleteRecipe_OwnerOnly(t *testing.T) {
	e := setup(t)
	d := store.RecipeDetail{Recipe: agenda.Recipe{Title: "Tacos", OwnerUserID: e.ana.ID}}
	require.NoError(t, e.st.CreateRecipe(context.Background(), &d))
	path := "/recipes/" + d.ID.String()

	assert.Equal(t, http.StatusForbidden, do(t, e.app(e.beto.ID), http.MethodDelete, path, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, do(t, e.app(e.ana.ID), http.MethodDelete, path, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, e.app(e.ana.ID), http.MethodDelete, path, nil).StatusCode)
	assert.Equal(t, []string{mqx.KeyRecipeDeleted}, e.pub.Keys())
	assert.Contains(t, e.es.seen(), "DELETE /recipes/_doc/"+d.ID.String())
}

func TestSearchRecipes(t *testing.T) {
	e := setup(t)
	app := e.app(e.ana.ID)
	res := do(t, app, http.MethodGet, "/search/recipes?q=tacos", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body struct {
		Data esx.SearchResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 1, body.Data.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/search/recipes", nil).StatusCode)

	off := testutil.NewApp(func(app *fiber.App) { app.Get("/search/recipes", SearchRecipesHandler(Search{})) })
	res = do(t, off, http.MethodGet, "/search/recipes?q=tacos", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
}

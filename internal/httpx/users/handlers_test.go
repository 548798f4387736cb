package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"planeat-api/internal/db/dbtest"
	"planeat-api/internal/httpx/kit/testutil"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/store"
)

func postJSON(t *testing.T, app *fiber.App, path string, v any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	return res
}

func TestCreateUser(t *testing.T) {
	st := store.New(dbtest.Open(t))
	app := testutil.NewApp(func(app *fiber.App) { app.Post("/users", CreateUserHandler(st)) })

	res := postJSON(t, app, "/users", UserCreateRequest{Username: "ana", Email: "ana@example.com", Password: "Secretp@ssw0rd"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var raw bytes.Buffer
	_, _ = raw.ReadFrom(res.Body)
	if strings.Contains(raw.String(), "argon2id") || strings.Contains(raw.String(), "password") {
		t.Fatalf("password hash leaked: %s", raw.String())
	}
	var body struct {
		Data store.User `json:"data"`
	}
	if err := json.Unmarshal(raw.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.DisplayName != "ana" {
		t.Fatalf("display name should default to username, got %q", body.Data.DisplayName)
	}

	stored, err := st.UserByUsername(context.Background(), "ana")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("unexpected stored hash %q", stored.PasswordHash)
	}

	if res := postJSON(t, app, "/users", UserCreateRequest{Username: "ana", Password: "Secretp@ssw0rd"}); res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", res.StatusCode)
	}
	bad := []UserCreateRequest{
		{Username: "a", Password: "Secretp@ssw0rd"},
		{Username: "beto", Password: "short"},
		{Username: "beto", Email: "not-an-email", Password: "Secretp@ssw0rd"},
	}
	for _, in := range bad {
		if res := postJSON(t, app, "/users", in); res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", in, res.StatusCode)
		}
	}
}

func TestMeAndProfile(t *testing.T) {
	st := store.New(dbtest.Open(t))
	u := store.User{Username: "ana", DisplayName: "Ana", PasswordHash: "x"}
	if err := st.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	app := testutil.NewApp(
		testutil.AsUser(u.ID),
		func(app *fiber.App) { app.Get("/users/me", mw.RequireUser(), MeHandler(st)) },
		func(app *fiber.App) { app.Get("/users/:id", GetUserHandler(st)) },
	)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	if err != nil || res.StatusCode != http.StatusOK {
		t.Fatalf("me: %v %d", err, res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest(http.MethodGet, "/users/"+u.ID.String(), nil))
	var body struct {
		Data PublicUser `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.DisplayName != "Ana" {
		t.Fatalf("unexpected profile: %+v", body.Data)
	}

	res, _ = app.Test(httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest(http.MethodGet, "/users/00000000-0000-0000-0000-000000000001", nil))
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

package kit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestOKEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return OK(c, fiber.Map{"x": 1})
	})
	req := httptest.NewRequest("GET", "/t", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "OK" || body["message"] != "success" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	data := body["data"].(map[string]any)
	if int(data["x"].(float64)) != 1 {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestErrorHandler_APIError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/conflict", func(c *fiber.Ctx) error { return Conflict("username taken", "ana") })
	app.Get("/limited", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTooManyRequests, "slow down") })

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/conflict", 409, "E_CONFLICT"},
		{"/limited", 429, "E_RATE_LIMITED"},
		{"/missing", 404, "E_NOT_FOUND"},
	}
	for _, tc := range cases {
		res, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		if err != nil {
			t.Fatalf("%s: request err: %v", tc.path, err)
		}
		if res.StatusCode != tc.status {
			t.Fatalf("%s: status %d, want %d", tc.path, res.StatusCode, tc.status)
		}
		var body map[string]any
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["code"] != tc.code {
			t.Fatalf("%s: code %v, want %s", tc.path, body["code"], tc.code)
		}
	}
}

func TestParsePaging(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	var got PagingParams
	app.Get("/p", func(c *fiber.Ctx) error {
		p, err := ParsePaging(c, "title", "created_at")
		if err != nil {
			return err
		}
		got = p
		return List(c, []int{1, 2}, p.Meta(2, nil))
	})

	res, err := app.Test(httptest.NewRequest("GET", "/p?limit=500&offset=4&sort=title:desc&with_total=true", nil))
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("status %d", res.StatusCode)
	}
	if got.Limit != 100 || got.Offset != 4 || got.Sort != "title" || !got.Desc || !got.WithTotal {
		t.Fatalf("unexpected params: %+v", got)
	}
	var body struct {
		Meta PageMeta `json:"meta"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Meta.NextOffset == nil || *body.Meta.NextOffset != 6 || body.Meta.Sort != "title:desc" {
		t.Fatalf("unexpected meta: %+v", body.Meta)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/p?sort=password_hash", nil))
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 for unknown sort, got %d", res.StatusCode)
	}
}

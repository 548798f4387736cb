package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
)

func TestObserveOrphan(t *testing.T) {
	m := New()
	e := agenda.New(agenda.WithObserver(m))
	snap := agenda.Snapshot{
		Days:    []agenda.CalendarDay{{ID: uuid.New(), Year: 2024, Month: 6, Day: 1}},
		Entries: nil,
	}
	userID := uuid.New()
	snap.Entries = []agenda.ScheduleEntry{{ID: uuid.New(), UserID: userID, RecipeID: uuid.New(), CalendarDayID: snap.Days[0].ID}}

	assert.Empty(t, e.RecipesForUserOnDate(snap, userID, agenda.Date{Year: 2024, Month: 6, Day: 1}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orphans.WithLabelValues(agenda.ReasonMissingRecipe)))
}

func TestObserveAudit(t *testing.T) {
	m := New()
	m.ObserveAudit(agenda.Report{OrphanDayRefs: []uuid.UUID{uuid.New(), uuid.New()}}, 30*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditFindings.WithLabelValues("orphan_day_refs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AuditFindings.WithLabelValues("duplicate_days")))
	assert.Greater(t, testutil.ToFloat64(m.AuditLastRun), 0.0)
}

func TestMiddleware(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/agenda/days/:date", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "no") })

	for _, path := range []string{"/agenda/days/2024-06-01", "/agenda/days/2024-06-02", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/agenda/days/:date", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/boom", "418")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "planeat_http_requests_total"))
}

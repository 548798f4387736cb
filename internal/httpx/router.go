// Package httpx wires the REST API routes and common middleware.
package httpx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"planeat-api/internal/config"
	"planeat-api/internal/httpx/admin"
	"planeat-api/internal/httpx/agenda"
	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/httpx/recipes"
	"planeat-api/internal/httpx/social"
	"planeat-api/internal/httpx/users"
	"planeat-api/internal/metrics"
	"planeat-api/internal/mqx"
	"planeat-api/internal/planner"
	"planeat-api/internal/store"
)

// Providers carries the dependencies handlers need. MQ, Search, RDB and
// Metrics are optional.
type Providers struct {
	Config  *config.Config
	Store   *store.Store
	Planner *planner.Service
	MQ      mqx.Publisher
	Search  recipes.Search
	RDB     redis.UniversalClient
	Metrics *metrics.Metrics
}

// Register mounts every route on app.
func Register(app *fiber.App, p *Providers) {
	if p.Metrics != nil {
		app.Use(p.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(p.Metrics.Handler()))
	}
	app.Get("/health", HealthHandler(p.Store))
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	cfg := p.Config
	api := app.Group("/api/v1", mw.JWTMiddleware(auth.Parser(cfg)))
	limit := mw.RateLimit(p.RDB, cfg.RateLimit.WindowSec, cfg.RateLimit.Max)
	user := mw.RequireUser()

	api.Post("/auth/login", limit, auth.LoginHandler(cfg, p.Store))
	api.Get("/auth/me", user, auth.MeHandler())

	api.Post("/users", limit, users.CreateUserHandler(p.Store))
	api.Get("/users/me", user, users.MeHandler(p.Store))
	api.Get("/users/me/favorites", user, social.ListFavoritesHandler(p.Store))
	api.Get("/users/me/recommendations", user, social.ListRecommendationsHandler(p.Store))
	api.Get("/users/:id", users.GetUserHandler(p.Store))

	api.Get("/recipes", recipes.ListRecipesHandler(p.Store))
	api.Post("/recipes", user, recipes.CreateRecipeHandler(p.Store, p.MQ, p.Search))
	api.Get("/recipes/:id", recipes.GetRecipeHandler(p.Store))
	api.Delete("/recipes/:id", user, recipes.DeleteRecipeHandler(p.Store, p.MQ, p.Search))
	api.Put("/recipes/:id/favorite", user, social.AddFavoriteHandler(p.Store))
	api.Delete("/recipes/:id/favorite", user, social.RemoveFavoriteHandler(p.Store))
	api.Put("/recipes/:id/rating", user, social.RateHandler(p.Store, p.MQ))
	api.Delete("/recipes/:id/rating", user, social.DeleteRatingHandler(p.Store, p.MQ))
	api.Get("/recipes/:id/comments", social.ListCommentsHandler(p.Store))
	api.Post("/recipes/:id/comments", user, limit, social.AddCommentHandler(p.Store))
	api.Delete("/recipes/:id/comments/:cid", user, social.DeleteCommentHandler(p.Store))
	api.Get("/search/recipes", recipes.SearchRecipesHandler(p.Search))
	api.Post("/recommendations", user, limit, social.RecommendHandler(p.Store, p.MQ))

	ag := api.Group("/agenda", user)
	ag.Post("/entries", limit, agenda.ScheduleHandler(p.Planner))
	ag.Delete("/entries/:id", limit, agenda.UnscheduleHandler(p.Planner))
	ag.Get("/days/:date", agenda.DayAgendaHandler(p.Planner))
	ag.Get("/months/:year/:month", agenda.MonthHighlightsHandler(p.Planner))
	api.Get("/calendar/days", agenda.CalendarDaysHandler(p.Planner))

	api.Post("/admin/audit", mw.RequireRoles(admin.Role), admin.AuditHandler(p.Planner))
}

// Package agenda serves the calendar and daily agenda endpoints.
package agenda

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	domain "planeat-api/internal/agenda"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/mw"
	"planeat-api/internal/planner"
)

// plannerError maps planner sentinels to API errors.
func plannerError(err error, what string) error {
	switch {
	case errors.Is(err, planner.ErrInvalidMealType):
		return kit.BadRequest("meal_type must be Desayuno, Comida or Cena", nil)
	case errors.Is(err, planner.ErrInvalidDate):
		return kit.BadRequest("invalid date", err.Error())
	case errors.Is(err, planner.ErrRecipeNotFound):
		return kit.NotFound("recipe not found")
	case errors.Is(err, planner.ErrEntryNotFound):
		return kit.NotFound("schedule entry not found")
	case errors.Is(err, planner.ErrForbidden):
		return kit.Forbidden("entry belongs to another user")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, what+" timed out")
	}
	return kit.InternalError(what+" failed", err.Error())
}

// ScheduleHandler schedules a recipe for the caller.
//
//	@Summary      Schedule recipe
//	@Description  Put a recipe on a date and meal slot; the calendar day is created on first use
//	@Tags         agenda
//	@Accept       json
//	@Produce      json
//	@Security     BearerAuth
//	@Param        body  body      agenda.ScheduleRequest  true  "entry"
//	@Success      201   {object}  planner.ScheduleResult
//	@Failure      400   {object}  map[string]interface{}
//	@Failure      404   {object}  map[string]interface{}
//	@Failure      429   {object}  map[string]interface{}
//	@Router       /api/v1/agenda/entries [post]
func ScheduleHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		var body ScheduleRequest
		if err := c.BodyParser(&body); err != nil {
			return kit.BadRequest("invalid body", nil)
		}
		recipeID, err := uuid.Parse(body.RecipeID)
		if err != nil {
			return kit.BadRequest("invalid recipe_id", body.RecipeID)
		}
		date, err := domain.ParseDate(body.Date)
		if err != nil {
			return kit.BadRequest("date must be YYYY-MM-DD", body.Date)
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		res, err := svc.Schedule(ctx, planner.ScheduleInput{UserID: uid, RecipeID: recipeID, Date: date, MealType: body.MealType})
		if err != nil {
			return plannerError(err, "schedule")
		}
		return kit.Created(c, res)
	}
}

// DayAgendaHandler lists the caller's recipes for a date.
//
//	@Summary      Day agenda
//	@Description  Recipes the caller scheduled on the date, in scheduling order
//	@Tags         agenda
//	@Produce      json
//	@Security     BearerAuth
//	@Param        date  path      string  true  "YYYY-MM-DD"
//	@Success      200   {array}   agenda.Scheduled
//	@Failure      400   {object}  map[string]interface{}
//	@Router       /api/v1/agenda/days/{date} [get]
func DayAgendaHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		date, err := domain.ParseDate(c.Params("date"))
		if err != nil {
			return kit.BadRequest("date must be YYYY-MM-DD", c.Params("date"))
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		items, err := svc.DayAgenda(ctx, uid, date)
		if err != nil {
			return plannerError(err, "day agenda")
		}
		return kit.OK(c, items)
	}
}

func yearMonth(year, month string) (int, int, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return 0, 0, kit.BadRequest("invalid year", year)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, kit.BadRequest("invalid month", month)
	}
	return y, m, nil
}

// MonthHighlightsHandler returns the days of a month with scheduled recipes.
//
//	@Summary      Month highlights
//	@Tags         agenda
//	@Produce      json
//	@Security     BearerAuth
//	@Param        year   path      int  true  "year"
//	@Param        month  path      int  true  "month 1-12"
//	@Success      200    {object}  agenda.MonthResponse
//	@Failure      400    {object}  map[string]interface{}
//	@Router       /api/v1/agenda/months/{year}/{month} [get]
func MonthHighlightsHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		y, m, err := yearMonth(c.Params("year"), c.Params("month"))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		days, err := svc.MonthHighlights(ctx, uid, y, m)
		if err != nil {
			return plannerError(err, "month highlights")
		}
		return kit.OK(c, MonthResponse{Year: y, Month: m, Days: days})
	}
}

// UnscheduleHandler removes one of the caller's entries.
//
//	@Summary      Unschedule
//	@Tags         agenda
//	@Security     BearerAuth
//	@Param        id   path  string  true  "entry id"
//	@Success      204
//	@Failure      403  {object}  map[string]interface{}
//	@Failure      404  {object}  map[string]interface{}
//	@Router       /api/v1/agenda/entries/{id} [delete]
func UnscheduleHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := mw.UserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		id, err := kit.ParamUUID(c, "id")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		if err := svc.Unschedule(ctx, uid, id); err != nil {
			return plannerError(err, "unschedule")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CalendarDaysHandler lists the calendar day records of a month.
//
//	@Summary      Calendar days
//	@Tags         agenda
//	@Produce      json
//	@Param        year   query     int  true  "year"
//	@Param        month  query     int  true  "month 1-12"
//	@Success      200    {array}   agenda.CalendarDay
//	@Failure      400    {object}  map[string]interface{}
//	@Router       /api/v1/calendar/days [get]
func CalendarDaysHandler(svc *planner.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		y, m, err := yearMonth(c.Query("year"), c.Query("month"))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()
		days, err := svc.CalendarDays(ctx, y, m)
		if err != nil {
			return plannerError(err, "calendar days")
		}
		return kit.OK(c, days)
	}
}

package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"planeat-api/internal/agenda"
)

var entryColumns = []string{"id", "user_id", "recipe_id", "calendar_day_id", "meal_type", "created_at"}

// CreateEntry inserts e, filling ID and CreatedAt when they are zero.
func (s *Store) CreateEntry(ctx context.Context, e *agenda.ScheduleEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.exec(ctx, s.b().Insert("schedule_entries").
		Columns(entryColumns...).
		Values(e.ID, e.UserID, e.RecipeID, e.CalendarDayID, string(e.MealType), e.CreatedAt))
	return err
}

func (s *Store) EntryByID(ctx context.Context, id uuid.UUID) (agenda.ScheduleEntry, error) {
	return one[agenda.ScheduleEntry](ctx, s, s.b().Select(entryColumns...).
		From(entsql.Table("schedule_entries")).
		Where(entsql.EQ("id", id)))
}

// DeleteEntry removes the entry id owned by userID.
func (s *Store) DeleteEntry(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.exec(ctx, s.b().Delete("schedule_entries").
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))))
	if err != nil {
		return err
	}
	return lo.Ternary(n == 0, ErrNotFound, nil)
}

// EntriesForUserOnDays returns the user's entries on the given days in
// insertion order.
func (s *Store) EntriesForUserOnDays(ctx context.Context, userID uuid.UUID, dayIDs []uuid.UUID) ([]agenda.ScheduleEntry, error) {
	out := []agenda.ScheduleEntry{}
	if len(dayIDs) == 0 {
		return out, nil
	}
	err := s.all(ctx, s.b().Select(entryColumns...).
		From(entsql.Table("schedule_entries")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("calendar_day_id", anys(dayIDs)...))).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id")), &out)
	return out, err
}

// AllEntries returns every schedule entry in insertion order.
func (s *Store) AllEntries(ctx context.Context) ([]agenda.ScheduleEntry, error) {
	out := []agenda.ScheduleEntry{}
	err := s.all(ctx, s.b().Select(entryColumns...).
		From(entsql.Table("schedule_entries")).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id")), &out)
	return out, err
}

// AllRecipeRefs returns the id and title of every recipe, for audits.
func (s *Store) AllRecipeRefs(ctx context.Context) ([]agenda.Recipe, error) {
	out := []agenda.Recipe{}
	err := s.all(ctx, s.b().Select("id", "title").From(entsql.Table("recipes")), &out)
	return out, err
}

// EntriesForUserInMonth returns the user's entries whose calendar day falls in
// year/month, in insertion order.
func (s *Store) EntriesForUserInMonth(ctx context.Context, userID uuid.UUID, year, month int) ([]agenda.ScheduleEntry, error) {
	b := s.b()
	e, d := b.Table("schedule_entries"), b.Table("calendar_days")
	sel := b.Select(e.Columns(entryColumns...)...).
		From(e).
		Join(d).On(e.C("calendar_day_id"), d.C("id")).
		Where(entsql.And(
			entsql.EQ(e.C("user_id"), userID),
			entsql.EQ(d.C("year"), year),
			entsql.EQ(d.C("month"), month),
		)).
		OrderBy(entsql.Asc(e.C("created_at")), entsql.Asc(e.C("id")))
	out := []agenda.ScheduleEntry{}
	if err := s.all(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

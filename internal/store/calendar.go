package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"planeat-api/internal/agenda"
)

var dayColumns = []string{"id", "year", "month", "day"}

func (s *Store) DayByDate(ctx context.Context, d agenda.Date) (agenda.CalendarDay, error) {
	return one[agenda.CalendarDay](ctx, s, s.b().Select(dayColumns...).
		From(entsql.Table("calendar_days")).
		Where(entsql.And(entsql.EQ("year", d.Year), entsql.EQ("month", d.Month), entsql.EQ("day", d.Day))))
}

// DaysInMonth returns the calendar days of year/month ordered by day.
func (s *Store) DaysInMonth(ctx context.Context, year, month int) ([]agenda.CalendarDay, error) {
	out := []agenda.CalendarDay{}
	err := s.all(ctx, s.b().Select(dayColumns...).
		From(entsql.Table("calendar_days")).
		Where(entsql.And(entsql.EQ("year", year), entsql.EQ("month", month))).
		OrderBy(entsql.Asc("day")), &out)
	return out, err
}

// AllDays returns every calendar day.
func (s *Store) AllDays(ctx context.Context) ([]agenda.CalendarDay, error) {
	out := []agenda.CalendarDay{}
	err := s.all(ctx, s.b().Select(dayColumns...).
		From(entsql.Table("calendar_days")).
		OrderBy(entsql.Asc("year"), entsql.Asc("month"), entsql.Asc("day")), &out)
	return out, err
}

// InsertDay persists a day decided by agenda.EnsureCalendarDay. When another
// writer stored the same date first, the stored row wins and is returned with
// created=false.
func (s *Store) InsertDay(ctx context.Context, day agenda.CalendarDay) (agenda.CalendarDay, bool, error) {
	_, err := s.exec(ctx, s.b().Insert("calendar_days").
		Columns(dayColumns...).
		Values(day.ID, day.Year, day.Month, day.Day).
		OnConflict(entsql.ConflictColumns("year", "month", "day"), entsql.DoNothing()))
	if err != nil {
		return agenda.CalendarDay{}, false, err
	}
	stored, err := s.DayByDate(ctx, day.Date())
	if err != nil {
		return agenda.CalendarDay{}, false, err
	}
	return stored, stored.ID == day.ID, nil
}

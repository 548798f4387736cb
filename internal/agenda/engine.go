package agenda

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Orphan describes a schedule entry the join had to drop.
type Orphan struct {
	Entry  ScheduleEntry
	Reason string
}

// ReasonMissingRecipe marks an entry whose recipe is not in the snapshot.
const ReasonMissingRecipe = "missing_recipe"

// Observer is told about every entry the join drops. Absence never becomes
// an error; this is the only place it surfaces.
type Observer interface {
	ObserveOrphan(o Orphan)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Orphan)

func (f ObserverFunc) ObserveOrphan(o Orphan) { f(o) }

// Engine runs joins and reports orphans to its observers.
type Engine struct {
	observers []Observer
	newID     func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver adds an orphan observer. Nil observers are ignored.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithIDGenerator overrides how EnsureCalendarDay mints new day ids.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = fn }
}

func New(opts ...Option) *Engine {
	e := &Engine{newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

func (e *Engine) report(o Orphan) {
	for _, obs := range e.observers {
		obs.ObserveOrphan(o)
	}
}

// findDay returns the first day matching date.
func findDay(days []CalendarDay, date Date) (CalendarDay, bool) {
	return lo.Find(days, func(d CalendarDay) bool { return d.Date() == date })
}

// ScheduleForUserOnDate returns the user's agenda lines for date, in the order
// the matching entries appear in snap.Entries. A missing day yields an empty
// slice; entries whose recipe is missing are dropped and reported.
func (e *Engine) ScheduleForUserOnDate(snap Snapshot, userID uuid.UUID, date Date) []Scheduled {
	day, ok := findDay(snap.Days, date)
	if !ok {
		return []Scheduled{}
	}
	recipes := lo.KeyBy(snap.Recipes, func(r Recipe) uuid.UUID { return r.ID })
	out := make([]Scheduled, 0)
	for _, entry := range snap.Entries {
		if entry.UserID != userID || entry.CalendarDayID != day.ID {
			continue
		}
		r, found := recipes[entry.RecipeID]
		if !found {
			e.report(Orphan{Entry: entry, Reason: ReasonMissingRecipe})
			continue
		}
		out = append(out, Scheduled{EntryID: entry.ID, MealType: entry.MealType, Recipe: r})
	}
	return out
}

// RecipesForUserOnDate returns the recipes userID has scheduled on date.
func (e *Engine) RecipesForUserOnDate(snap Snapshot, userID uuid.UUID, date Date) []Recipe {
	return lo.Map(e.ScheduleForUserOnDate(snap, userID, date), func(s Scheduled, _ int) Recipe { return s.Recipe })
}

// DaysWithContent returns the days of year/month on which userID has at least one entry.
func (e *Engine) DaysWithContent(snap Snapshot, userID uuid.UUID, year, month int) DaySet {
	inMonth := lo.SliceToMap(
		lo.Filter(snap.Days, func(d CalendarDay, _ int) bool { return d.Year == year && d.Month == month }),
		func(d CalendarDay) (uuid.UUID, int) { return d.ID, d.Day },
	)
	out := DaySet{}
	for _, entry := range snap.Entries {
		if entry.UserID != userID {
			continue
		}
		if day, ok := inMonth[entry.CalendarDayID]; ok {
			out[day] = struct{}{}
		}
	}
	return out
}

// EnsureCalendarDay decides whether a day for year/month/day must be created.
// It returns the existing record with created=false, or a new unsaved record
// with created=true. Persisting the new day is the caller's job.
func (e *Engine) EnsureCalendarDay(days []CalendarDay, year, month, day int) (CalendarDay, bool) {
	if existing, ok := findDay(days, Date{Year: year, Month: month, Day: day}); ok {
		return existing, false
	}
	return CalendarDay{ID: e.newID(), Year: year, Month: month, Day: day}, true
}

// RecipesForUserOnDate runs the join without observers.
func RecipesForUserOnDate(entries []ScheduleEntry, days []CalendarDay, recipes []Recipe, userID uuid.UUID, date Date) []Recipe {
	return defaultEngine.RecipesForUserOnDate(Snapshot{Entries: entries, Days: days, Recipes: recipes}, userID, date)
}

// DaysWithContent is the observer-free form of Engine.DaysWithContent.
func DaysWithContent(entries []ScheduleEntry, days []CalendarDay, userID uuid.UUID, year, month int) DaySet {
	return defaultEngine.DaysWithContent(Snapshot{Entries: entries, Days: days}, userID, year, month)
}

// EnsureCalendarDay is the package-level form of Engine.EnsureCalendarDay.
func EnsureCalendarDay(days []CalendarDay, year, month, day int) (CalendarDay, bool) {
	return defaultEngine.EnsureCalendarDay(days, year, month, day)
}

// DaySet is a set of day-of-month numbers.
type DaySet map[int]struct{}

func (s DaySet) Has(day int) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []int {
	days := lo.Keys(s)
	slices.Sort(days)
	return days
}

// Package agenda joins schedule entries, calendar days and recipes into a
// user's daily agenda. Everything here is pure: callers pass immutable
// snapshots and receive freshly allocated results, so functions are safe for
// concurrent use.
package agenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MealType tags the meal slot of a schedule entry.
type MealType string

const (
	Breakfast MealType = "Desayuno"
	Lunch     MealType = "Comida"
	Dinner    MealType = "Cena"
)

// MealTypes lists the accepted tags in day order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

var mealAliases = map[string]MealType{
	"desayuno":  Breakfast,
	"breakfast": Breakfast,
	"comida":    Lunch,
	"lunch":     Lunch,
	"cena":      Dinner,
	"dinner":    Dinner,
}

// ParseMealType accepts the canonical tags and their English names, case-insensitively.
func ParseMealType(s string) (MealType, error) {
	if m, ok := mealAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Valid reports whether m is one of the canonical tags.
func (m MealType) Valid() bool { return lo.Contains(MealTypes, m) }

// Date is a calendar date without time zone.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

const dateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD and rejects dates that do not exist.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Valid reports whether d names a real day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return DateOf(t) == d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// CalendarDay stands for one (year, month, day) triple. At most one exists per date.
type CalendarDay struct {
	ID    uuid.UUID `json:"id"`
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Day   int       `json:"day"`
}

func (c CalendarDay) Date() Date { return Date{Year: c.Year, Month: c.Month, Day: c.Day} }

// ScheduleEntry links a user, a recipe, a calendar day and a meal slot.
type ScheduleEntry struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	RecipeID      uuid.UUID `json:"recipe_id"`
	CalendarDayID uuid.UUID `json:"calendar_day_id"`
	MealType      MealType  `json:"meal_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// Recipe is the read-only view of a recipe the join needs.
type Recipe struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageRef    string    `json:"image_ref"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Snapshot bundles the three collections a join runs over.
type Snapshot struct {
	Entries []ScheduleEntry
	Days    []CalendarDay
	Recipes []Recipe
}

// Scheduled is one agenda line: the entry and the recipe it resolved to.
type Scheduled struct {
	EntryID  uuid.UUID `json:"entry_id"`
	MealType MealType  `json:"meal_type"`
	Recipe   Recipe    `json:"recipe"`
}

package agenda

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Report summarizes referential problems found in a snapshot.
type Report struct {
	Entries          int         `json:"entries"`
	Days             int         `json:"days"`
	Recipes          int         `json:"recipes"`
	OrphanRecipeRefs []uuid.UUID `json:"orphan_recipe_refs"`
	OrphanDayRefs    []uuid.UUID `json:"orphan_day_refs"`
	DuplicateDays    []Date      `json:"duplicate_days"`
}

// Clean reports whether no problem was found.
func (r Report) Clean() bool {
	return len(r.OrphanRecipeRefs) == 0 && len(r.OrphanDayRefs) == 0 && len(r.DuplicateDays) == 0
}

// Audit scans every entry of snap and lists the ids of entries pointing at a
// missing recipe or day, plus dates that have more than one calendar day.
// Observers are not notified: they count orphans dropped by joins, and the
// report itself carries the audit's findings.
func (e *Engine) Audit(snap Snapshot) Report {
	recipeIDs := lo.SliceToMap(snap.Recipes, func(r Recipe) (uuid.UUID, struct{}) { return r.ID, struct{}{} })
	dayIDs := lo.SliceToMap(snap.Days, func(d CalendarDay) (uuid.UUID, struct{}) { return d.ID, struct{}{} })

	rep := Report{
		Entries:          len(snap.Entries),
		Days:             len(snap.Days),
		Recipes:          len(snap.Recipes),
		OrphanRecipeRefs: []uuid.UUID{},
		OrphanDayRefs:    []uuid.UUID{},
	}
	for _, entry := range snap.Entries {
		if _, ok := dayIDs[entry.CalendarDayID]; !ok {
			rep.OrphanDayRefs = append(rep.OrphanDayRefs, entry.ID)
		}
		if _, ok := recipeIDs[entry.RecipeID]; !ok {
			rep.OrphanRecipeRefs = append(rep.OrphanRecipeRefs, entry.ID)
		}
	}

	counts := lo.CountValuesBy(snap.Days, func(d CalendarDay) Date { return d.Date() })
	rep.DuplicateDays = lo.Uniq(lo.FilterMap(snap.Days, func(d CalendarDay, _ int) (Date, bool) {
		return d.Date(), counts[d.Date()] > 1
	}))
	return rep
}

// Audit runs Engine.Audit on the default engine.
func Audit(snap Snapshot) Report { return defaultEngine.Audit(snap) }

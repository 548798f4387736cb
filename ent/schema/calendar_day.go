package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"
)

// CalendarDay is the shared record for one date. Rows are created lazily and never updated.
type CalendarDay struct{ ent.Schema }

func (CalendarDay) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("calendar_days")}
}

func (CalendarDay) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.Int("year").Immutable(),
		field.Int("month").Range(1, 12).Immutable(),
		field.Int("day").Range(1, 31).Immutable(),
	}
}

func (CalendarDay) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("entries", ScheduleEntry.Type),
	}
}

// Indexes of the CalendarDay. The unique date index is what makes concurrent
// creation of the same day safe across processes.
func (CalendarDay) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("year", "month", "day").Unique().StorageKey("calendar_days_date_key"),
	}
}

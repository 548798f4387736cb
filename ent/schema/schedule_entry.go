package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"
)

// ScheduleEntry places a recipe on a user's calendar day in a meal slot.
type ScheduleEntry struct{ ent.Schema }

func (ScheduleEntry) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("schedule_entries")}
}

func (ScheduleEntry) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("recipe_id", uuid.UUID{}),
		field.UUID("calendar_day_id", uuid.UUID{}),
		field.Enum("meal_type").Values("Desayuno", "Comida", "Cena"),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (ScheduleEntry) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).Ref("schedule_entries").Field("user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipe", Recipe.Type).Ref("scheduled").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("calendar_day", CalendarDay.Type).Ref("entries").Field("calendar_day_id").Unique().Required(),
	}
}

func (ScheduleEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "calendar_day_id"),
	}
}

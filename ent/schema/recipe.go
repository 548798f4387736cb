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

// Recipe is a community recipe owned by the user who uploaded it.
type Recipe struct{ ent.Schema }

func (Recipe) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("recipes")}
}

func (Recipe) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.String("title").NotEmpty().MaxLen(200),
		field.Text("description").Default(""),
		field.String("image_ref").Optional().MaxLen(512),
		field.UUID("owner_id", uuid.UUID{}),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Recipe) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("owner", User.Type).Ref("recipes").Field("owner_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("ingredients", Ingredient.Type),
		edge.To("steps", RecipeStep.Type),
		edge.To("scheduled", ScheduleEntry.Type),
		edge.To("favorited_by", Favorite.Type),
		edge.To("ratings", Rating.Type),
		edge.To("comments", Comment.Type),
		edge.To("recommendations", Recommendation.Type),
	}
}

func (Recipe) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("owner_id", "created_at"),
	}
}

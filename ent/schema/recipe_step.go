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

// RecipeStep is a numbered preparation step.
type RecipeStep struct{ ent.Schema }

func (RecipeStep) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("recipe_steps")}
}

func (RecipeStep) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("recipe_id", uuid.UUID{}),
		field.Int("position").Positive(),
		field.String("title").Default("").MaxLen(200),
		field.Text("description").Default(""),
	}
}

func (RecipeStep) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("recipe", Recipe.Type).Ref("steps").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (RecipeStep) Indexes() []ent.Index {
	return []ent.Index{index.Fields("recipe_id", "position").Unique()}
}

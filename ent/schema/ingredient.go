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

// Ingredient is one line of a recipe's shopping list.
type Ingredient struct{ ent.Schema }

func (Ingredient) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("ingredients")}
}

func (Ingredient) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("recipe_id", uuid.UUID{}),
		field.Int("position").NonNegative(),
		field.String("name").NotEmpty().MaxLen(128),
		field.String("quantity").Default("").MaxLen(64),
	}
}

func (Ingredient) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("recipe", Recipe.Type).Ref("ingredients").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Ingredient) Indexes() []ent.Index {
	return []ent.Index{index.Fields("recipe_id", "position")}
}

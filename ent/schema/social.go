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

// Favorite marks a recipe as a user's favorite.
type Favorite struct{ ent.Schema }

func (Favorite) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("favorites")}
}

func (Favorite) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("recipe_id", uuid.UUID{}),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Favorite) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).Ref("favorites").Field("user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipe", Recipe.Type).Ref("favorited_by").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Favorite) Indexes() []ent.Index {
	return []ent.Index{index.Fields("user_id", "recipe_id").Unique()}
}

// Rating is a user's 1..5 score for a recipe; one per user and recipe.
type Rating struct{ ent.Schema }

func (Rating) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("ratings")}
}

func (Rating) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("recipe_id", uuid.UUID{}),
		field.Int("score").Range(1, 5),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Rating) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).Ref("ratings").Field("user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipe", Recipe.Type).Ref("ratings").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Rating) Indexes() []ent.Index {
	return []ent.Index{index.Fields("user_id", "recipe_id").Unique()}
}

// Comment is a free-text note left on a recipe.
type Comment struct{ ent.Schema }

func (Comment) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("comments")}
}

func (Comment) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("user_id", uuid.UUID{}),
		field.UUID("recipe_id", uuid.UUID{}),
		field.Text("body").NotEmpty(),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Comment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).Ref("comments").Field("user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipe", Recipe.Type).Ref("comments").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Comment) Indexes() []ent.Index {
	return []ent.Index{index.Fields("recipe_id", "created_at")}
}

// Recommendation is a recipe one user suggests to another.
type Recommendation struct{ ent.Schema }

func (Recommendation) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("recommendations")}
}

func (Recommendation) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.UUID("from_user_id", uuid.UUID{}),
		field.UUID("to_user_id", uuid.UUID{}),
		field.UUID("recipe_id", uuid.UUID{}),
		field.String("message").Default("").MaxLen(500),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Recommendation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("sender", User.Type).Ref("sent_recommendations").Field("from_user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipient", User.Type).Ref("received_recommendations").Field("to_user_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("recipe", Recipe.Type).Ref("recommendations").Field("recipe_id").Unique().Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Recommendation) Indexes() []ent.Index {
	return []ent.Index{index.Fields("to_user_id", "created_at")}
}

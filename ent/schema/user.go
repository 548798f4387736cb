// Package schema declares the planeat entities. The declarations drive the
// database migration in internal/db.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"github.com/google/uuid"
)

// User holds the schema definition for the User entity.
type User struct{ ent.Schema }

// Annotations of the User.
func (User) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Table("users")}
}

// Fields of the User.
func (User) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New),
		field.String("username").NotEmpty().MaxLen(64).Unique(),
		field.String("display_name").Optional().MaxLen(128),
		field.String("email").Optional().MaxLen(255),
		field.String("password_hash").Sensitive(),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

// Edges of the User.
func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("recipes", Recipe.Type),
		edge.To("schedule_entries", ScheduleEntry.Type),
		edge.To("favorites", Favorite.Type),
		edge.To("ratings", Rating.Type),
		edge.To("comments", Comment.Type),
		edge.To("sent_recommendations", Recommendation.Type),
		edge.To("received_recommendations", Recommendation.Type),
	}
}

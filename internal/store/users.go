package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" sql:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

var userColumns = []string{"id", "username", "display_name", "email", "password_hash", "created_at"}

// CreateUser inserts u, filling ID and CreatedAt when they are zero.
// A taken username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	_, err := s.exec(ctx, s.b().Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Username, u.DisplayName, u.Email, u.PasswordHash, u.CreatedAt))
	return err
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return one[User](ctx, s, s.b().Select(userColumns...).From(entsql.Table("users")).Where(entsql.EQ("id", id)))
}

func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return one[User](ctx, s, s.b().Select(userColumns...).From(entsql.Table("users")).Where(entsql.EQ("username", username)))
}

// UsersExist reports whether every id names a user.
func (s *Store) UsersExist(ctx context.Context, ids ...uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	n, err := s.count(ctx, s.b().Select(entsql.Count("*")).From(entsql.Table("users")).Where(entsql.In("id", anys(ids)...)))
	return n == len(uniq(ids)), err
}

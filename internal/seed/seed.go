// Package seed loads demo users, recipes and agenda entries from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"planeat-api/internal/agenda"
	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/logx"
	"planeat-api/internal/planner"
	"planeat-api/internal/store"
)

var seedLogger = logx.GetScope("seed")

type File struct {
	Users    []User     `yaml:"users"`
	Recipes  []Recipe   `yaml:"recipes"`
	Schedule []Schedule `yaml:"schedule"`
}

type User struct {
	Username    string `yaml:"username"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
	Password    string `yaml:"password"`
}

type Recipe struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	ImageRef    string       `yaml:"image_ref"`
	Owner       string       `yaml:"owner"`
	Ingredients []Ingredient `yaml:"ingredients"`
	Steps       []Step       `yaml:"steps"`
}

type Ingredient struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

type Step struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Schedule references users by username and recipes by title.
type Schedule struct {
	User     string `yaml:"user"`
	Recipe   string `yaml:"recipe"`
	Date     string `yaml:"date"`
	MealType string `yaml:"meal_type"`
}

// Result counts what Apply created.
type Result struct {
	Users     int `json:"users"`
	Recipes   int `json:"recipes"`
	Scheduled int `json:"scheduled"`
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

// Apply writes f. Users that already exist are reused rather than recreated;
// recipes and schedule entries are always added. Schedule rows go through the
// planner so calendar days are created the same way the API creates them.
func Apply(ctx context.Context, st *store.Store, svc *planner.Service, f *File) (Result, error) {
	var res Result
	users := map[string]uuid.UUID{}
	for _, u := range f.Users {
		if existing, err := st.UserByUsername(ctx, u.Username); err == nil {
			users[u.Username] = existing.ID
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return res, fmt.Errorf("seed: user %q: %w", u.Username, err)
		}
		rec := store.User{Username: u.Username, Email: u.Email, DisplayName: u.DisplayName, PasswordHash: hash}
		if rec.DisplayName == "" {
			rec.DisplayName = u.Username
		}
		if err := st.CreateUser(ctx, &rec); err != nil {
			return res, fmt.Errorf("seed: user %q: %w", u.Username, err)
		}
		users[u.Username] = rec.ID
		res.Users++
	}

	lookup := func(name string) (uuid.UUID, error) {
		if id, ok := users[name]; ok {
			return id, nil
		}
		u, err := st.UserByUsername(ctx, name)
		if err != nil {
			return uuid.Nil, fmt.Errorf("seed: unknown user %q: %w", name, err)
		}
		users[name] = u.ID
		return u.ID, nil
	}

	recipes := map[string]uuid.UUID{}
	for _, r := range f.Recipes {
		owner, err := lookup(r.Owner)
		if err != nil {
			return res, err
		}
		d := store.RecipeDetail{Recipe: agenda.Recipe{
			Title: r.Title, Description: r.Description, ImageRef: r.ImageRef, OwnerUserID: owner,
		}}
		for _, in := range r.Ingredients {
			d.Ingredients = append(d.Ingredients, store.Ingredient{Name: in.Name, Quantity: in.Quantity})
		}
		for _, s := range r.Steps {
			d.Steps = append(d.Steps, store.Step{Title: s.Title, Description: s.Description})
		}
		if err := st.CreateRecipe(ctx, &d); err != nil {
			return res, fmt.Errorf("seed: recipe %q: %w", r.Title, err)
		}
		recipes[r.Title] = d.ID
		res.Recipes++
	}

	for i, s := range f.Schedule {
		userID, err := lookup(s.User)
		if err != nil {
			return res, err
		}
		recipeID, ok := recipes[s.Recipe]
		if !ok {
			return res, fmt.Errorf("seed: schedule[%d]: unknown recipe %q", i, s.Recipe)
		}
		date, err := agenda.ParseDate(s.Date)
		if err != nil {
			return res, fmt.Errorf("seed: schedule[%d]: %w", i, err)
		}
		if _, err := svc.Schedule(ctx, planner.ScheduleInput{
			UserID: userID, RecipeID: recipeID, Date: date, MealType: s.MealType,
		}); err != nil {
			return res, fmt.Errorf("seed: schedule[%d]: %w", i, err)
		}
		res.Scheduled++
	}

	seedLogger.Info("seed applied",
		zap.Int("users", res.Users),
		zap.Int("recipes", res.Recipes),
		zap.Int("scheduled", res.Scheduled),
	)
	return res, nil
}

package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"github.com/samber/lo"

	entschema "planeat-api/ent/schema"
)

// Entities are the schemas the service persists.
var Entities = []ent.Interface{
	entschema.User{},
	entschema.Recipe{},
	entschema.Ingredient{},
	entschema.RecipeStep{},
	entschema.CalendarDay{},
	entschema.ScheduleEntry{},
	entschema.Favorite{},
	entschema.Rating{},
	entschema.Comment{},
	entschema.Recommendation{},
}

// Migrate creates or updates every table declared in Entities.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	tables, err := Tables(Entities...)
	if err != nil {
		return err
	}
	m, err := sqlschema.NewMigrate(drv, sqlschema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("db: new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	dbLogger.Sugar().Infof("schema migrated (%d tables)", len(tables))
	return nil
}

// Tables converts ent schema declarations into migration tables. Inverse
// edges that name a field become foreign keys to the referenced table's
// primary key.
func Tables(defs ...ent.Interface) ([]*sqlschema.Table, error) {
	tables := make([]*sqlschema.Table, 0, len(defs))
	byType := make(map[string]*sqlschema.Table, len(defs))
	for _, def := range defs {
		t, err := tableOf(def)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		byType[reflect.TypeOf(def).Name()] = t
	}
	for i, def := range defs {
		t := tables[i]
		for _, e := range def.Edges() {
			d := e.Descriptor()
			if !d.Inverse || d.Field == "" {
				continue
			}
			ref, ok := byType[d.Type]
			if !ok {
				return nil, fmt.Errorf("db: %s.%s references unregistered type %s", t.Name, d.Name, d.Type)
			}
			col, ok := t.Column(d.Field)
			if !ok {
				return nil, fmt.Errorf("db: %s.%s uses unknown column %s", t.Name, d.Name, d.Field)
			}
			t.AddForeignKey(&sqlschema.ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_%s", t.Name, ref.Name, d.Name),
				Columns:    []*sqlschema.Column{col},
				RefTable:   ref,
				RefColumns: ref.PrimaryKey,
				OnDelete:   onDelete(d.Annotations),
			})
		}
	}
	return tables, nil
}

func tableOf(def ent.Interface) (*sqlschema.Table, error) {
	name := tableName(def.Annotations())
	if name == "" {
		return nil, fmt.Errorf("db: %T has no entsql table annotation", def)
	}
	t := sqlschema.NewTable(name)
	for _, f := range def.Fields() {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("db: %s.%s: %w", name, d.Name, d.Err)
		}
		col := &sqlschema.Column{
			Name:       lo.Ternary(d.StorageKey != "", d.StorageKey, d.Name),
			Type:       d.Info.Type,
			Nullable:   d.Optional,
			Unique:     d.Unique,
			Size:       int64(d.Size),
			SchemaType: d.SchemaType,
		}
		if d.Info.Type == field.TypeEnum {
			col.Enums = lo.Map(d.Enums, func(e struct{ N, V string }, _ int) string { return e.V })
		}
		// Function defaults (uuid.New, time.Now) are applied by the store.
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		if col.Name == "id" {
			t.AddPrimary(col)
		} else {
			t.AddColumn(col)
		}
	}
	for _, ix := range def.Indexes() {
		d := ix.Descriptor()
		idxName := lo.Ternary(d.StorageKey != "", d.StorageKey, name+"_"+strings.Join(d.Fields, "_"))
		t.AddIndex(idxName, d.Unique, d.Fields)
	}
	return t, nil
}

func tableName(annotations []schema.Annotation) string {
	for _, a := range annotations {
		switch ann := a.(type) {
		case *entsql.Annotation:
			if ann.Table != "" {
				return ann.Table
			}
		case entsql.Annotation:
			if ann.Table != "" {
				return ann.Table
			}
		}
	}
	return ""
}

func onDelete(annotations []schema.Annotation) sqlschema.ReferenceOption {
	for _, a := range annotations {
		if ann, ok := a.(*entsql.Annotation); ok && ann.OnDelete != "" {
			return sqlschema.ReferenceOption(ann.OnDelete)
		}
	}
	return sqlschema.NoAction
}

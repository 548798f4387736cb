//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"planeat-api/internal/config"
)

func Test_Open_With_PostgresContainer(t *testing.T) {
	ctx := context.Background()

	pg, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("planeat"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithSQLDriver("pgx"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	cfg := &config.Config{}
	cfg.DB.URL = fmt.Sprintf("postgres://postgres:postgres@%s:%s/planeat?sslmode=disable", host, port.Port())
	cfg.DB.MaxOpenConns = 5
	cfg.DB.MaxIdleConns = 2

	drv, closeFn, err := Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer closeFn()

	ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := Migrate(ctx2, drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A second run must see no diff.
	if err := Migrate(ctx2, drv); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	insert := func() error {
		q, args := entsql.Dialect(drv.Dialect()).
			Insert("calendar_days").
			Columns("id", "year", "month", "day").
			Values(uuid.New(), 2024, 6, 1).
			Query()
		return drv.Exec(ctx2, q, args, nil)
	}
	if err := insert(); err != nil {
		t.Fatalf("insert calendar day: %v", err)
	}
	err = insert()
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("expected unique violation, got %v", err)
	}

	UpdatePool(8, 4)
	t.Logf("Database integration test passed successfully")
}

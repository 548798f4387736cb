// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/config"
	"planeat-api/internal/db"
)

// Open returns a migrated in-memory sqlite database private to t.
func Open(t testing.TB) *entsql.Driver {
	t.Helper()
	cfg := &config.Config{}
	cfg.DB.URL = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", ""))
	drv, closeFn, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(closeFn)
	require.NoError(t, db.Migrate(context.Background(), drv))
	return drv
}

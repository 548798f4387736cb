// Package db opens the SQL database behind the API and migrates its schema.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver for PostgreSQL
	_ "modernc.org/sqlite"             // register pure-Go sqlite driver

	"planeat-api/internal/config"
	"planeat-api/internal/logx"
)

var dbLogger = logx.GetScope("db")

var baseDB atomic.Pointer[sql.DB]

// ErrNoDatabaseURL is returned when DATABASE_URL is empty.
var ErrNoDatabaseURL = errors.New("db: DATABASE_URL is required")

// resolve maps a database URL to a database/sql driver name, ent dialect and DSN.
// postgres:// and postgresql:// use pgx; sqlite:// and file: use modernc sqlite
// with foreign keys switched on.
func resolve(url string) (driverName, dialectName, dsn string, err error) {
	switch {
	case url == "":
		return "", "", "", ErrNoDatabaseURL
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", dialect.Postgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", dialect.SQLite, withForeignKeys("file:" + strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "file:"):
		return "sqlite", dialect.SQLite, withForeignKeys(url), nil
	default:
		return "", "", "", fmt.Errorf("db: unsupported database url scheme in %q", url)
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Open opens the database named by cfg.DB.URL and wraps it in an ent SQL driver.
func Open(cfg *config.Config) (*entsql.Driver, func(), error) {
	driverName, dialectName, dsn, err := resolve(cfg.DB.URL)
	if err != nil {
		return nil, func() {}, err
	}
	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, func() {}, err
	}
	if dialectName == dialect.SQLite {
		// A single connection keeps in-memory databases shared and writes serialized.
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		baseDB.Store(sqldb)
	}

	drv := entsql.OpenDB(dialectName, sqldb)
	closer := func() {
		baseDB.CompareAndSwap(sqldb, nil)
		if err := drv.Close(); err != nil {
			dbLogger.Sugar().Errorf("close db: %v", err)
		}
	}
	dbLogger.Sugar().Infof("database opened (dialect=%s)", dialectName)
	return drv, closer, nil
}

// UpdatePool updates DB pool settings at runtime.
func UpdatePool(maxOpen, maxIdle int) {
	sqldb := baseDB.Load()
	if sqldb == nil {
		return
	}
	if maxOpen > 0 {
		sqldb.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqldb.SetMaxIdleConns(maxIdle)
	}
}

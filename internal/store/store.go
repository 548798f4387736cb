// Package store persists planeat entities with ent's SQL builders.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"planeat-api/internal/logx"
)

var storeLogger = logx.GetScope("store")

// Store runs queries against the database or, inside WithTx, a transaction.
type Store struct {
	drv  *entsql.Driver
	conn dialect.ExecQuerier
	inTx bool
	now  func() time.Time
}

func New(drv *entsql.Driver) *Store {
	return &Store{drv: drv, conn: drv, now: func() time.Time { return time.Now().UTC() }}
}

// Dialect returns the SQL dialect of the underlying driver.
func (s *Store) Dialect() string { return s.drv.Dialect() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.drv.DB().PingContext(ctx) }

func (s *Store) b() *entsql.DialectBuilder { return entsql.Dialect(s.drv.Dialect()) }

// WithTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				storeLogger.Sugar().Warnf("rollback: %v", rerr)
			}
			return
		}
		err = tx.Commit()
	}()
	return fn(&Store{drv: s.drv, conn: tx, inTx: true, now: s.now})
}

func (s *Store) all(ctx context.Context, q entsql.Querier, v any) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := s.conn.Query(ctx, query, args, rows); err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}

// one returns the first row of q, or ErrNotFound.
func one[T any](ctx context.Context, s *Store, q entsql.Querier) (T, error) {
	var out []T
	if err := s.all(ctx, q, &out); err != nil {
		var zero T
		return zero, err
	}
	if len(out) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return out[0], nil
}

func (s *Store) count(ctx context.Context, q entsql.Querier) (int, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := s.conn.Query(ctx, query, args, rows); err != nil {
		return 0, mapErr(err)
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

func (s *Store) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := s.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
	// Sort is a whitelisted column; Desc flips its direction.
	Sort string
	Desc bool
}

func (p Page) apply(sel *entsql.Selector, allowed map[string]bool, fallback string) {
	col := fallback
	if allowed[p.Sort] {
		col = p.Sort
	}
	if p.Desc {
		sel.OrderBy(entsql.Desc(sel.C(col)))
	} else {
		sel.OrderBy(entsql.Asc(sel.C(col)))
	}
	if col != "id" {
		sel.OrderBy(entsql.Asc(sel.C("id")))
	}
	if p.Limit > 0 {
		sel.Limit(p.Limit)
	}
	if p.Offset > 0 {
		sel.Offset(p.Offset)
	}
}

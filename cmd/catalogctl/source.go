package main

import (
	"context"
	"fmt"
	"time"

	"servicecatalog/internal/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// entrySource is what lookup and list read from: a file loaded into memory
// or the catalog_entries table.
type entrySource interface {
	Lookup(ctx context.Context, key string) (catalog.Entry, error)
	List(ctx context.Context, q catalog.ListQuery) ([]catalog.Entry, int, error)
}

type dbSource struct {
	*catalog.PostgresRepo
}

func (s dbSource) Lookup(ctx context.Context, key string) (catalog.Entry, error) {
	return s.GetByKey(ctx, key)
}

func (o *options) source(ctx context.Context) (entrySource, func(), error) {
	if o.dsn == "" {
		idx, err := o.load()
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewService(idx), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, o.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return dbSource{catalog.NewPostgresRepo(pool)}, pool.Close, nil
}

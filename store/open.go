package store

import (
	"context"
	"fmt"

	"studyrag/config"
)

// Open returns the store selected by cfg.StoreDriver, with tables created.
func Open(ctx context.Context, cfg config.Config) (DBStorer, error) {
	switch cfg.StoreDriver {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres", "":
		pg, err := NewPostgresStore(ctx, cfg.PG.ConnString(), cfg.Embedding.Dim)
		if err != nil {
			return nil, fmt.Errorf("error to connect to Postgres database: %w", err)
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("error to create tables: %w", err)
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

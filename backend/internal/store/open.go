package store

import (
	"context"
	"fmt"

	"student-connect/backend/pkg/config"
)

// Open connects to the backend selected by cfg.StoreBackend and makes sure
// its schema exists.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.StoreBackend {
	case "neo4j":
		st, err = NewNeo4j(ctx, Neo4jConfig{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		})
	case "sqlite":
		st, err = NewSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("ensuring %s schema: %w", cfg.StoreBackend, err)
	}
	return st, nil
}

// Package graph implements the social graph on top of a document store:
// generic CRUD with cascading deletes, and the relationship actions behind
// feeds, profiles, friendship, likes and search.
package graph

import (
	"context"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
	"student-connect/backend/pkg/logger"
)

// Repository handles all graph operations over a Store
type Repository struct {
	store  store.Store
	logger *zap.Logger

	// symmetricFriends makes addfriend/unfriend mutate both directions
	symmetricFriends bool
}

// NewRepository creates a new graph repository
func NewRepository(st store.Store, symmetricFriends bool) *Repository {
	return &Repository{
		store:            st,
		logger:           logger.Named("graph"),
		symmetricFriends: symmetricFriends,
	}
}

// Store returns the underlying document store
func (r *Repository) Store() store.Store {
	return r.store
}

// Close closes the underlying store
func (r *Repository) Close(ctx context.Context) error {
	return r.store.Close(ctx)
}

// Normalizer validates and rewrites a document body before it is written.
// current holds the stored fields on replace and patch, and is nil on create.
type Normalizer func(fields, current map[string]any) (map[string]any, error)

func normalize(norm Normalizer, fields, current map[string]any) (map[string]any, error) {
	if norm == nil {
		return store.StripMeta(fields), nil
	}
	return norm(fields, current)
}

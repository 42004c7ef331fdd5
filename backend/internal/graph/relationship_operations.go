package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// ============================================================================
// Relation Operations
// ============================================================================

// ValidateEdge checks that the edge type is known and that both endpoints
// belong to the collections that type connects.
func ValidateEdge(e store.Edge) error {
	kind, ok := edgeKinds[e.Type]
	if !ok {
		return apperrors.NewInvalidArgument("type", fmt.Sprintf("unknown edge type %q", e.Type))
	}

	fromCol, _, err := store.ParseID(e.From)
	if err != nil {
		return apperrors.NewInvalidArgument("_from", err.Error())
	}
	toCol, _, err := store.ParseID(e.To)
	if err != nil {
		return apperrors.NewInvalidArgument("_to", err.Error())
	}

	if fromCol != kind.from || toCol != kind.to {
		return apperrors.NewInvalidArgument("type", fmt.Sprintf(
			"%s connects %s to %s, got %s to %s", e.Type, kind.from, kind.to, fromCol, toCol,
		))
	}
	return nil
}

// ListEdges returns every relation
func (r *Repository) ListEdges(ctx context.Context) ([]store.Edge, error) {
	return r.store.Edges(ctx, store.EdgeQuery{})
}

// GetEdge returns one relation by key
func (r *Repository) GetEdge(ctx context.Context, key string) (store.Edge, error) {
	return getEdge(ctx, r.store, key)
}

func getEdge(ctx context.Context, s store.Store, key string) (store.Edge, error) {
	edges, err := s.Edges(ctx, store.EdgeQuery{Key: key})
	if err != nil {
		return store.Edge{}, err
	}
	if len(edges) == 0 {
		return store.Edge{}, apperrors.NewNotFound(store.Relations, key)
	}
	return edges[0], nil
}

// CreateEdge validates and inserts a relation between two existing documents
func (r *Repository) CreateEdge(ctx context.Context, e store.Edge) (store.Edge, error) {
	if err := ValidateEdge(e); err != nil {
		return store.Edge{}, err
	}

	var out store.Edge
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		if err := requireEndpoints(ctx, tx, e); err != nil {
			return err
		}
		var err error
		out, err = tx.InsertEdge(ctx, e)
		return err
	})
	if err != nil {
		return store.Edge{}, err
	}

	r.logger.Info("Relation created",
		zap.String("type", string(out.Type)),
		zap.String("from", out.From),
		zap.String("to", out.To),
	)
	return out, nil
}

// ReplaceEdge rewrites a relation in place, keeping its key. Empty fields of
// e keep their current value.
func (r *Repository) ReplaceEdge(ctx context.Context, key string, e store.Edge) (store.Edge, error) {
	var out store.Edge
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		current, err := getEdge(ctx, tx, key)
		if err != nil {
			return err
		}

		next := current
		if e.From != "" {
			next.From = e.From
		}
		if e.To != "" {
			next.To = e.To
		}
		if e.Type != "" {
			next.Type = e.Type
		}
		if err := ValidateEdge(next); err != nil {
			return err
		}
		if err := requireEndpoints(ctx, tx, next); err != nil {
			return err
		}

		if err := tx.RemoveEdge(ctx, key); err != nil {
			return err
		}
		out, err = tx.InsertEdge(ctx, next)
		return err
	})
	if err != nil {
		return store.Edge{}, err
	}

	r.logger.Info("Relation updated", zap.String("key", key), zap.String("type", string(out.Type)))
	return out, nil
}

// DeleteEdge removes one relation
func (r *Repository) DeleteEdge(ctx context.Context, key string) error {
	if err := r.store.RemoveEdge(ctx, key); err != nil {
		return err
	}
	r.logger.Info("Relation deleted", zap.String("key", key))
	return nil
}

func requireEndpoints(ctx context.Context, s store.Store, e store.Edge) error {
	for _, id := range []string{e.From, e.To} {
		col, key, err := store.ParseID(id)
		if err != nil {
			return apperrors.NewInvalidArgument("edge", err.Error())
		}
		if _, err := s.Get(ctx, col, key); err != nil {
			return err
		}
	}
	return nil
}

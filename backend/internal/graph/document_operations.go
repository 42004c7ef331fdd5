package graph

import (
	"context"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// ============================================================================
// Document Operations
// ============================================================================

// List returns every document in col
func (r *Repository) List(ctx context.Context, col store.Collection) ([]store.Document, error) {
	return r.store.All(ctx, col)
}

// Get returns one document
func (r *Repository) Get(ctx context.Context, col store.Collection, key string) (store.Document, error) {
	return r.store.Get(ctx, col, key)
}

// Create normalizes and inserts a document. An empty key is generated.
func (r *Repository) Create(ctx context.Context, col store.Collection, key string, fields map[string]any, norm Normalizer) (store.Document, error) {
	fields, err := normalize(norm, fields, nil)
	if err != nil {
		return store.Document{}, err
	}

	doc, err := r.store.Insert(ctx, store.Document{Collection: col, Key: key, Fields: fields})
	if err != nil {
		return store.Document{}, err
	}

	r.logger.Info("Document created",
		zap.String("collection", string(col)),
		zap.String("key", doc.Key),
	)
	return doc, nil
}

// Replace overwrites a document's body. A non-empty expectRev must match the
// stored revision.
func (r *Repository) Replace(ctx context.Context, col store.Collection, key string, fields map[string]any, expectRev string, norm Normalizer) (store.Document, error) {
	return r.rewrite(ctx, col, key, expectRev, func(current map[string]any) (map[string]any, error) {
		return normalize(norm, fields, current)
	})
}

// Patch deep-merges patch into the stored body, then normalizes and writes
// the result under the same revision guard as Replace.
func (r *Repository) Patch(ctx context.Context, col store.Collection, key string, patch map[string]any, expectRev string, norm Normalizer) (store.Document, error) {
	return r.rewrite(ctx, col, key, expectRev, func(current map[string]any) (map[string]any, error) {
		return normalize(norm, store.Merge(current, store.StripMeta(patch)), current)
	})
}

func (r *Repository) rewrite(ctx context.Context, col store.Collection, key, expectRev string, build func(current map[string]any) (map[string]any, error)) (store.Document, error) {
	var out store.Document
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		current, err := tx.Get(ctx, col, key)
		if err != nil {
			return err
		}
		if expectRev != "" && expectRev != current.Rev {
			return apperrors.NewConflict(string(col), key, "revision mismatch", nil)
		}

		fields, err := build(current.Fields)
		if err != nil {
			return err
		}

		out, err = tx.Replace(ctx, store.Document{Collection: col, Key: key, Fields: fields}, current.Rev)
		return err
	})
	if err != nil {
		return store.Document{}, err
	}

	r.logger.Info("Document updated",
		zap.String("collection", string(col)),
		zap.String("key", key),
		zap.String("rev", out.Rev),
	)
	return out, nil
}

// Delete removes a document and every edge touching it. Deleting a post
// also deletes its comments along with their edges.
func (r *Repository) Delete(ctx context.Context, col store.Collection, key string) error {
	var cascaded int
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		doc, err := tx.Get(ctx, col, key)
		if err != nil {
			return err
		}

		if col == store.Posts {
			comments, err := outbound(ctx, tx, doc.ID(), store.PostHasComment)
			if err != nil {
				return err
			}
			for _, c := range comments {
				if err := tx.Remove(ctx, store.Comments, c.Key); err != nil && !apperrors.IsNotFound(err) {
					return err
				}
				cascaded++
			}
		}

		return tx.Remove(ctx, col, key)
	})
	if err != nil {
		return err
	}

	r.logger.Info("Document deleted",
		zap.String("collection", string(col)),
		zap.String("key", key),
		zap.Int("cascaded_comments", cascaded),
	)
	return nil
}

package seed

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"student-connect/backend/internal/constants"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
	"student-connect/backend/pkg/logger"
)

// Stats counts what a load wrote
type Stats struct {
	Documents int64
	Edges     int64
}

// Loader writes datasets into a store with bounded concurrency
type Loader struct {
	store   store.Store
	workers int
	logger  *zap.Logger
}

// NewLoader returns a loader running at most workers inserts at once.
// Non-positive values fall back to MaxSeedWorkers.
func NewLoader(st store.Store, workers int) *Loader {
	if workers <= 0 || workers > constants.MaxSeedWorkers {
		workers = constants.MaxSeedWorkers
	}
	return &Loader{store: st, workers: workers, logger: logger.Named("seed")}
}

// Load inserts every document, then every edge. The first failure cancels
// the remaining inserts; what was written stays.
func (l *Loader) Load(ctx context.Context, ds Dataset) (Stats, error) {
	var stats Stats

	docs, err := l.run(ctx, len(ds.Documents), func(ctx context.Context, i int) error {
		doc := ds.Documents[i]
		if _, err := l.store.Insert(ctx, doc); err != nil {
			return fmt.Errorf("inserting %s: %w", doc.ID(), err)
		}
		return nil
	})
	stats.Documents = docs
	if err != nil {
		return stats, err
	}
	l.logger.Info("Documents loaded", zap.Int64("count", stats.Documents))

	edges, err := l.run(ctx, len(ds.Edges), func(ctx context.Context, i int) error {
		e := ds.Edges[i]
		if _, err := l.store.InsertEdge(ctx, e); err != nil {
			return fmt.Errorf("inserting %s edge %s -> %s: %w", e.Type, e.From, e.To, err)
		}
		return nil
	})
	stats.Edges = edges
	if err != nil {
		return stats, err
	}
	l.logger.Info("Edges loaded", zap.Int64("count", stats.Edges))

	return stats, nil
}

// generated lists the collections a dataset writes to
var generated = []store.Collection{store.Students, store.Schools, store.Topics, store.Posts, store.Comments}

// Reset removes every document of the generated collections, and with them
// every edge touching one. Users and sessions are left alone.
func (l *Loader) Reset(ctx context.Context) (int64, error) {
	var docs []store.Document
	for _, col := range generated {
		all, err := l.store.All(ctx, col)
		if err != nil {
			return 0, err
		}
		docs = append(docs, all...)
	}

	removed, err := l.run(ctx, len(docs), func(ctx context.Context, i int) error {
		err := l.store.Remove(ctx, docs[i].Collection, docs[i].Key)
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return removed, fmt.Errorf("resetting store: %w", err)
	}

	l.logger.Info("Store reset", zap.Int64("documents", removed))
	return removed, nil
}

// run calls insert for 0..n-1 on the worker pool and counts successes
func (l *Loader) run(ctx context.Context, n int, insert func(ctx context.Context, i int) error) (int64, error) {
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := insert(gctx, i); err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	return done.Load(), err
}

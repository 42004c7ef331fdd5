package graph

import (
	"context"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// ============================================================================
// Friendship Operations
// ============================================================================

// AddFriend links the acting user's student to friendKey. The call is
// idempotent; with symmetric friendship the reverse edge is ensured too.
func (r *Repository) AddFriend(ctx context.Context, username, friendKey string) ([]store.Edge, error) {
	var edges []store.Edge
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		me, err := requireStudent(ctx, tx, username)
		if err != nil {
			return err
		}
		friend, err := tx.Get(ctx, store.Students, friendKey)
		if err != nil {
			return err
		}
		if me.Key == friend.Key {
			return apperrors.NewInvalidArgument("friend_key", "cannot befriend yourself")
		}

		edge, err := ensureEdge(ctx, tx, me.ID(), friend.ID(), store.Friend)
		if err != nil {
			return err
		}
		edges = append(edges, edge)

		if r.symmetricFriends {
			back, err := ensureEdge(ctx, tx, friend.ID(), me.ID(), store.Friend)
			if err != nil {
				return err
			}
			edges = append(edges, back)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Friend added",
		zap.String("username", username),
		zap.String("friend", friendKey),
		zap.Bool("symmetric", r.symmetricFriends),
	)
	return edges, nil
}

// Unfriend removes the friend edges from the acting user's student to
// friendKey, and the reverse ones with symmetric friendship. It returns the
// number of edges removed.
func (r *Repository) Unfriend(ctx context.Context, username, friendKey string) (int, error) {
	var removed int
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		me, err := requireStudent(ctx, tx, username)
		if err != nil {
			return err
		}
		friendID := store.DocumentID(store.Students, friendKey)

		edges, err := tx.Edges(ctx, store.EdgeQuery{From: me.ID(), To: friendID, Type: store.Friend})
		if err != nil {
			return err
		}
		if r.symmetricFriends {
			back, err := tx.Edges(ctx, store.EdgeQuery{From: friendID, To: me.ID(), Type: store.Friend})
			if err != nil {
				return err
			}
			edges = append(edges, back...)
		}

		for _, e := range edges {
			if err := tx.RemoveEdge(ctx, e.Key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Friend removed",
		zap.String("username", username),
		zap.String("friend", friendKey),
		zap.Int("edges", removed),
	)
	return removed, nil
}

package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// ============================================================================
// Post & Comment Operations
// ============================================================================

// LikeKind selects what a like applies to
type LikeKind string

const (
	LikeKindPost    LikeKind = "post"
	LikeKindComment LikeKind = "comment"
)

func (k LikeKind) target() (store.Collection, store.EdgeType, error) {
	switch k {
	case LikeKindPost:
		return store.Posts, store.LikesPost, nil
	case LikeKindComment:
		return store.Comments, store.LikesComment, nil
	default:
		return "", "", apperrors.NewInvalidArgument("type", fmt.Sprintf("cannot like a %q", k))
	}
}

// CreatePost inserts a post and, when username is set, links it to that
// user's student with makes_post.
func (r *Repository) CreatePost(ctx context.Context, key string, fields map[string]any, username string, norm Normalizer) (store.Document, error) {
	var post store.Document
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		fields, err := normalize(norm, fields, nil)
		if err != nil {
			return err
		}
		post, err = tx.Insert(ctx, store.Document{Collection: store.Posts, Key: key, Fields: fields})
		if err != nil {
			return err
		}

		if username == "" {
			return nil
		}
		author, err := requireStudent(ctx, tx, username)
		if err != nil {
			return err
		}
		_, err = tx.InsertEdge(ctx, store.Edge{From: author.ID(), To: post.ID(), Type: store.MakesPost})
		return err
	})
	if err != nil {
		return store.Document{}, err
	}

	r.logger.Info("Post created",
		zap.String("key", post.Key),
		zap.String("username", username),
	)
	return post, nil
}

// CreateComment inserts a comment under postKey with post_has_comment and,
// when username is set, links its author with makes_comment.
func (r *Repository) CreateComment(ctx context.Context, key string, fields map[string]any, postKey, username string, norm Normalizer) (store.Document, error) {
	var comment store.Document
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		post, err := tx.Get(ctx, store.Posts, postKey)
		if err != nil {
			return err
		}

		fields, err := normalize(norm, fields, nil)
		if err != nil {
			return err
		}
		comment, err = tx.Insert(ctx, store.Document{Collection: store.Comments, Key: key, Fields: fields})
		if err != nil {
			return err
		}

		if _, err := tx.InsertEdge(ctx, store.Edge{From: post.ID(), To: comment.ID(), Type: store.PostHasComment}); err != nil {
			return err
		}

		if username == "" {
			return nil
		}
		author, err := requireStudent(ctx, tx, username)
		if err != nil {
			return err
		}
		_, err = tx.InsertEdge(ctx, store.Edge{From: author.ID(), To: comment.ID(), Type: store.MakesComment})
		return err
	})
	if err != nil {
		return store.Document{}, err
	}

	r.logger.Info("Comment created",
		zap.String("key", comment.Key),
		zap.String("post", postKey),
		zap.String("username", username),
	)
	return comment, nil
}

// LikeUnlike adds or removes the acting user's like on a post or comment and
// returns the students now liking it. Liking twice keeps one edge.
func (r *Repository) LikeUnlike(ctx context.Context, kind LikeKind, itemKey, username string, like bool) ([]store.Document, error) {
	col, edgeType, err := kind.target()
	if err != nil {
		return nil, err
	}

	var likers []store.Document
	err = r.store.Atomically(ctx, func(tx store.Store) error {
		item, err := tx.Get(ctx, col, itemKey)
		if err != nil {
			return err
		}
		me, err := requireStudent(ctx, tx, username)
		if err != nil {
			return err
		}

		if like {
			if _, err := ensureEdge(ctx, tx, me.ID(), item.ID(), edgeType); err != nil {
				return err
			}
		} else {
			edges, err := tx.Edges(ctx, store.EdgeQuery{From: me.ID(), To: item.ID(), Type: edgeType})
			if err != nil {
				return err
			}
			for _, e := range edges {
				if err := tx.RemoveEdge(ctx, e.Key); err != nil {
					return err
				}
			}
		}

		likers, err = inbound(ctx, tx, item.ID(), edgeType)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Like toggled",
		zap.String("kind", string(kind)),
		zap.String("item", itemKey),
		zap.String("username", username),
		zap.Bool("like", like),
	)
	return likers, nil
}

// Feed returns the posts of the acting user's student followed by those of
// each friend, in that order. Sources are fetched concurrently.
func (r *Repository) Feed(ctx context.Context, username string) ([]PostView, error) {
	me, linked, err := linkedStudent(ctx, r.store, username)
	if err != nil {
		return nil, err
	}
	if !linked {
		return []PostView{}, nil
	}

	friends, err := friendsOf(ctx, r.store, me.ID())
	if err != nil {
		return nil, err
	}
	sources := append([]store.Document{me}, friends...)

	perSource := make([][]PostView, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			posts, err := postsOf(gctx, r.store, src)
			if err != nil {
				return err
			}
			perSource[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := []PostView{}
	for _, posts := range perSource {
		feed = append(feed, posts...)
	}
	return feed, nil
}

// PostDetail returns one post with its likes and comments
func (r *Repository) PostDetail(ctx context.Context, postKey string) (PostView, error) {
	post, err := r.store.Get(ctx, store.Posts, postKey)
	if err != nil {
		return PostView{}, err
	}
	return postView(ctx, r.store, post)
}

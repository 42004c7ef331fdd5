package graph

import (
	"context"

	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// ============================================================================
// Traversal Helpers
// ============================================================================

// outbound returns the documents one typed hop away from id, following edge
// direction. Edges pointing at documents that no longer exist are skipped.
func outbound(ctx context.Context, s store.Store, id string, typ store.EdgeType) ([]store.Document, error) {
	edges, err := s.Edges(ctx, store.EdgeQuery{From: id, Type: typ})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.To)
	}
	return resolve(ctx, s, ids)
}

// inbound returns the documents one typed hop before id
func inbound(ctx context.Context, s store.Store, id string, typ store.EdgeType) ([]store.Document, error) {
	edges, err := s.Edges(ctx, store.EdgeQuery{To: id, Type: typ})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.From)
	}
	return resolve(ctx, s, ids)
}

// resolve fetches documents by id in order, dropping duplicates and ids
// that no longer resolve.
func resolve(ctx context.Context, s store.Store, ids []string) ([]store.Document, error) {
	docs := make([]store.Document, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		col, key, err := store.ParseID(id)
		if err != nil {
			continue
		}
		doc, err := s.Get(ctx, col, key)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// findUser resolves a login account by username
func findUser(ctx context.Context, s store.Store, username string) (store.Document, error) {
	return s.FindFirst(ctx, store.Users, "username", username)
}

// linkedStudent follows the user's points_to edge. ok is false when the
// user exists but has no profile yet.
func linkedStudent(ctx context.Context, s store.Store, username string) (student store.Document, ok bool, err error) {
	user, err := findUser(ctx, s, username)
	if err != nil {
		return store.Document{}, false, err
	}
	students, err := outbound(ctx, s, user.ID(), store.PointsTo)
	if err != nil {
		return store.Document{}, false, err
	}
	if len(students) == 0 {
		return store.Document{}, false, nil
	}
	return students[0], true, nil
}

// requireStudent is linkedStudent for mutations, where a missing profile is
// an error.
func requireStudent(ctx context.Context, s store.Store, username string) (store.Document, error) {
	student, ok, err := linkedStudent(ctx, s, username)
	if err != nil {
		return store.Document{}, err
	}
	if !ok {
		return store.Document{}, apperrors.NewNotFound(string(store.Students), "profile of "+username)
	}
	return student, nil
}

// friendsOf returns the students id has a friend edge to, excluding itself
func friendsOf(ctx context.Context, s store.Store, id string) ([]store.Document, error) {
	friends, err := outbound(ctx, s, id, store.Friend)
	if err != nil {
		return nil, err
	}
	out := friends[:0]
	for _, f := range friends {
		if f.ID() != id {
			out = append(out, f)
		}
	}
	return out, nil
}

// mutualFriends walks me -friend-> v -friend-> target and returns every v
// other than me and target.
func mutualFriends(ctx context.Context, s store.Store, meID, targetID string) ([]store.Document, error) {
	friends, err := friendsOf(ctx, s, meID)
	if err != nil {
		return nil, err
	}

	mutual := []store.Document{}
	for _, v := range friends {
		if v.ID() == targetID {
			continue
		}
		edges, err := s.Edges(ctx, store.EdgeQuery{From: v.ID(), To: targetID, Type: store.Friend})
		if err != nil {
			return nil, err
		}
		if len(edges) > 0 {
			mutual = append(mutual, v)
		}
	}
	return mutual, nil
}

// hasEdge reports whether at least one edge of typ runs from -> to
func hasEdge(ctx context.Context, s store.Store, from, to string, typ store.EdgeType) (bool, error) {
	edges, err := s.Edges(ctx, store.EdgeQuery{From: from, To: to, Type: typ})
	if err != nil {
		return false, err
	}
	return len(edges) > 0, nil
}

// ensureEdge inserts from -> to unless an edge of typ already exists
func ensureEdge(ctx context.Context, s store.Store, from, to string, typ store.EdgeType) (store.Edge, error) {
	edges, err := s.Edges(ctx, store.EdgeQuery{From: from, To: to, Type: typ})
	if err != nil {
		return store.Edge{}, err
	}
	if len(edges) > 0 {
		return edges[0], nil
	}
	return s.InsertEdge(ctx, store.Edge{From: from, To: to, Type: typ})
}

// removeEdges is a best-effort batch delete. Individual failures are
// counted rather than aborting the batch.
func removeEdges(ctx context.Context, s store.Store, edges []store.Edge) (removed, failed int) {
	for _, e := range edges {
		if err := s.RemoveEdge(ctx, e.Key); err != nil {
			failed++
			continue
		}
		removed++
	}
	return removed, failed
}

// postView assembles a post with its likes and comments
func postView(ctx context.Context, s store.Store, post store.Document) (PostView, error) {
	likes, err := inbound(ctx, s, post.ID(), store.LikesPost)
	if err != nil {
		return PostView{}, err
	}
	comments, err := outbound(ctx, s, post.ID(), store.PostHasComment)
	if err != nil {
		return PostView{}, err
	}

	view := PostView{
		Post:        post.JSON(),
		LikesOnPost: docsJSON(likes),
		Comments:    make([]CommentView, 0, len(comments)),
	}
	for _, c := range comments {
		authors, err := inbound(ctx, s, c.ID(), store.MakesComment)
		if err != nil {
			return PostView{}, err
		}
		commentLikes, err := inbound(ctx, s, c.ID(), store.LikesComment)
		if err != nil {
			return PostView{}, err
		}
		view.Comments = append(view.Comments, CommentView{
			Comment:        c.JSON(),
			Student:        docsJSON(authors),
			LikesOnComment: docsJSON(commentLikes),
		})
	}
	return view, nil
}

// postsOf returns every post authored by student, each tagged with it
func postsOf(ctx context.Context, s store.Store, student store.Document) ([]PostView, error) {
	posts, err := outbound(ctx, s, student.ID(), store.MakesPost)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		view, err := postView(ctx, s, p)
		if err != nil {
			return nil, err
		}
		view.Student = student.JSON()
		views = append(views, view)
	}
	return views, nil
}

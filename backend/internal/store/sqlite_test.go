package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "student-connect/backend/pkg/errors"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	s, err := NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	t.Cleanup(func() { s.Close(ctx) })
	return s
}

func TestSQLite_InsertGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	doc, err := s.Insert(ctx, Document{
		Collection: Students,
		Fields: map[string]any{
			"student_name": "Ada",
			"student_address": map[string]any{
				"city": "Austin",
			},
			"_key": "ignored-meta",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Key)
	assert.NotEmpty(t, doc.Rev)
	assert.NotContains(t, doc.Fields, KeyField)

	got, err := s.Get(ctx, Students, doc.Key)
	require.NoError(t, err)
	assert.Equal(t, doc.Rev, got.Rev)
	assert.Equal(t, "Ada", got.String("student_name"))
	assert.Equal(t, map[string]any{"city": "Austin"}, got.Fields["student_address"])
	assert.Equal(t, "Student/"+doc.Key, got.ID())
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.Get(context.Background(), Students, "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSQLite_InsertExplicitKeyConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.Insert(ctx, Document{Collection: Topics, Key: "go", Fields: map[string]any{"topic_text": "Go"}})
	require.NoError(t, err)

	_, err = s.Insert(ctx, Document{Collection: Topics, Key: "go", Fields: map[string]any{"topic_text": "Go"}})
	assert.True(t, apperrors.IsConflict(err))
}

func TestSQLite_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.Insert(ctx, Document{Collection: Users, Fields: map[string]any{"username": "alice"}})
	require.NoError(t, err)

	_, err = s.Insert(ctx, Document{Collection: Users, Fields: map[string]any{"username": "alice"}})
	assert.True(t, apperrors.IsConflict(err))

	// Same value in another collection is fine
	_, err = s.Insert(ctx, Document{Collection: Students, Fields: map[string]any{"username": "alice"}})
	assert.NoError(t, err)
}

func TestSQLite_AllOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Insert(ctx, Document{Collection: Topics, Fields: map[string]any{"topic_text": name}})
		require.NoError(t, err)
	}

	docs, err := s.All(ctx, Topics)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].String("topic_text"))
	assert.Equal(t, "c", docs[2].String("topic_text"))

	empty, err := s.All(ctx, Posts)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_FindFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	first, err := s.Insert(ctx, Document{Collection: Schools, Fields: map[string]any{"school_name": "MIT"}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, Document{Collection: Schools, Fields: map[string]any{"school_name": "MIT"}})
	require.NoError(t, err)

	got, err := s.FindFirst(ctx, Schools, "school_name", "MIT")
	require.NoError(t, err)
	assert.Equal(t, first.Key, got.Key)

	_, err = s.FindFirst(ctx, Schools, "school_name", "Yale")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.FindFirst(ctx, Schools, "bad'field", "x")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalid))
}

func TestSQLite_ReplaceRevision(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	doc, err := s.Insert(ctx, Document{Collection: Posts, Fields: map[string]any{"post_text": "v1"}})
	require.NoError(t, err)

	_, err = s.Replace(ctx, Document{Collection: Posts, Key: doc.Key, Fields: map[string]any{"post_text": "v2"}}, "stale")
	assert.True(t, apperrors.IsConflict(err))

	updated, err := s.Replace(ctx, Document{Collection: Posts, Key: doc.Key, Fields: map[string]any{"post_text": "v2"}}, doc.Rev)
	require.NoError(t, err)
	assert.NotEqual(t, doc.Rev, updated.Rev)

	got, err := s.Get(ctx, Posts, doc.Key)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.String("post_text"))

	_, err = s.Replace(ctx, Document{Collection: Posts, Key: "missing", Fields: map[string]any{}}, "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSQLite_RemoveDropsEdges(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	a, err := s.Insert(ctx, Document{Collection: Students, Fields: map[string]any{"student_name": "A"}})
	require.NoError(t, err)
	b, err := s.Insert(ctx, Document{Collection: Students, Fields: map[string]any{"student_name": "B"}})
	require.NoError(t, err)

	_, err = s.InsertEdge(ctx, Edge{From: a.ID(), To: b.ID(), Type: Friend})
	require.NoError(t, err)
	_, err = s.InsertEdge(ctx, Edge{From: b.ID(), To: a.ID(), Type: Friend})
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, Students, a.Key))

	edges, err := s.Edges(ctx, EdgeQuery{Touching: a.ID()})
	require.NoError(t, err)
	assert.Empty(t, edges)

	err = s.Remove(ctx, Students, a.Key)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSQLite_EdgeQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.InsertEdge(ctx, Edge{From: "Student/1", To: "Topic/1", Type: InterestedIn})
	require.NoError(t, err)
	_, err = s.InsertEdge(ctx, Edge{From: "Student/1", To: "School/1", Type: StudiesIn})
	require.NoError(t, err)
	liked, err := s.InsertEdge(ctx, Edge{From: "Student/2", To: "Post/1", Type: LikesPost})
	require.NoError(t, err)

	out, err := s.Edges(ctx, EdgeQuery{From: "Student/1"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	typed, err := s.Edges(ctx, EdgeQuery{From: "Student/1", Type: StudiesIn})
	require.NoError(t, err)
	require.Len(t, typed, 1)
	assert.Equal(t, "School/1", typed[0].To)

	in, err := s.Edges(ctx, EdgeQuery{To: "Post/1", Type: LikesPost})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, liked.Key, in[0].Key)

	require.NoError(t, s.RemoveEdge(ctx, liked.Key))
	assert.True(t, apperrors.IsNotFound(s.RemoveEdge(ctx, liked.Key)))

	_, err = s.InsertEdge(ctx, Edge{From: "Student/1"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalid))
}

func TestSQLite_AtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	err := s.Atomically(ctx, func(tx Store) error {
		if _, err := tx.Insert(ctx, Document{Collection: Topics, Fields: map[string]any{"topic_text": "x"}}); err != nil {
			return err
		}
		// Nested calls join the outer transaction
		return tx.Atomically(ctx, func(inner Store) error {
			_, err := inner.Get(ctx, Topics, "missing")
			return err
		})
	})
	require.Error(t, err)

	docs, err := s.All(ctx, Topics)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseID(t *testing.T) {
	col, key, err := ParseID("Post/abc")
	require.NoError(t, err)
	assert.Equal(t, Posts, col)
	assert.Equal(t, "abc", key)

	for _, bad := range []string{"", "Post", "Post/", "Nope/abc"} {
		_, _, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

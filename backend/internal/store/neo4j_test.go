package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "student-connect/backend/pkg/errors"
)

// Neo4j tests require a running instance.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables.
func newTestNeo4j(t *testing.T) *Neo4jStore {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := NewNeo4j(ctx, Neo4jConfig{
		URI:      envOr("NEO4J_URI", "bolt://localhost:7687"),
		Username: envOr("NEO4J_USER", "neo4j"),
		Password: envOr("NEO4J_PASSWORD", "password"),
		Database: os.Getenv("NEO4J_DATABASE"),
	})
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	require.NoError(t, s.EnsureSchema(context.Background()))
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cleanupNeo4j(t *testing.T, s *Neo4jStore, ids ...string) {
	t.Cleanup(func() {
		ctx := context.Background()
		session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.database})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (n:Document) WHERE n.id IN $ids DETACH DELETE n", map[string]any{"ids": ids})
	})
}

func TestNeo4j_DocumentLifecycle(t *testing.T) {
	s := newTestNeo4j(t)
	ctx := context.Background()

	key := "test-" + time.Now().Format("20060102150405.000000")
	cleanupNeo4j(t, s, DocumentID(Students, key))

	doc, err := s.Insert(ctx, Document{
		Collection: Students,
		Key:        key,
		Fields:     map[string]any{"student_name": "Neo"},
	})
	require.NoError(t, err)

	got, err := s.FindFirst(ctx, Students, "student_name", "Neo")
	require.NoError(t, err)
	assert.Equal(t, "Neo", got.String("student_name"))

	_, err = s.Replace(ctx, Document{Collection: Students, Key: key, Fields: map[string]any{"student_name": "Trinity"}}, "stale")
	assert.True(t, apperrors.IsConflict(err))

	updated, err := s.Replace(ctx, Document{Collection: Students, Key: key, Fields: map[string]any{"student_name": "Trinity"}}, doc.Rev)
	require.NoError(t, err)
	assert.NotEqual(t, doc.Rev, updated.Rev)

	require.NoError(t, s.Remove(ctx, Students, key))
	_, err = s.Get(ctx, Students, key)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNeo4j_Edges(t *testing.T) {
	s := newTestNeo4j(t)
	ctx := context.Background()

	suffix := time.Now().Format("20060102150405.000000")
	a, err := s.Insert(ctx, Document{Collection: Students, Key: "a-" + suffix, Fields: map[string]any{}})
	require.NoError(t, err)
	b, err := s.Insert(ctx, Document{Collection: Students, Key: "b-" + suffix, Fields: map[string]any{}})
	require.NoError(t, err)
	cleanupNeo4j(t, s, a.ID(), b.ID())

	edge, err := s.InsertEdge(ctx, Edge{From: a.ID(), To: b.ID(), Type: Friend})
	require.NoError(t, err)

	edges, err := s.Edges(ctx, EdgeQuery{From: a.ID(), Type: Friend})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, b.ID(), edges[0].To)

	require.NoError(t, s.RemoveEdge(ctx, edge.Key))
	assert.True(t, apperrors.IsNotFound(s.RemoveEdge(ctx, edge.Key)))

	_, err = s.InsertEdge(ctx, Edge{From: a.ID(), To: "Student/missing-" + suffix, Type: Friend})
	assert.True(t, apperrors.IsNotFound(err))
}

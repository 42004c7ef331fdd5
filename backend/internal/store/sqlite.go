package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "student-connect/backend/pkg/errors"
)

// sqlExecutor is satisfied by both *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	q  sqlExecutor
	tx *sql.Tx
}

// NewSQLite opens (creating if needed) the SQLite database at dbPath.
// Use ":memory:" for a throwaway database.
func NewSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.NewStoreConnectionFailed("sqlite", dbPath, err)
	}

	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	// Verify connectivity
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStoreConnectionFailed("sqlite", dbPath, err)
	}

	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	return &SQLiteStore{db: db, q: db}, nil
}

// Close closes the SQLite connection
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// EnsureSchema creates tables and indexes
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range allSchemaStatements() {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Atomically runs fn in a transaction, joining the current one if any.
func (s *SQLiteStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreQueryFailed("begin transaction", err)
	}

	if err := fn(&SQLiteStore{db: s.db, q: tx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreQueryFailed("commit transaction", err)
	}
	return nil
}

// All returns every document of col in insertion order
func (s *SQLiteStore) All(ctx context.Context, col Collection) ([]Document, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT key, rev, body, created_at, updated_at
		FROM documents
		WHERE collection = ?
		ORDER BY rowid
	`, string(col))
	if err != nil {
		return nil, apperrors.NewStoreQueryFailed("list "+string(col), err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows, col)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreQueryFailed("list "+string(col), err)
	}
	return docs, nil
}

// Get returns one document by key
func (s *SQLiteStore) Get(ctx context.Context, col Collection, key string) (Document, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT key, rev, body, created_at, updated_at
		FROM documents
		WHERE collection = ? AND key = ?
	`, string(col), key)

	doc, err := scanDocument(row, col)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, apperrors.NewNotFound(string(col), key)
	}
	return doc, err
}

// FindFirst returns the earliest document whose top-level field equals value
func (s *SQLiteStore) FindFirst(ctx context.Context, col Collection, field, value string) (Document, error) {
	if !validField(field) {
		return Document{}, apperrors.NewInvalidArgument("field", field)
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT key, rev, body, created_at, updated_at
		FROM documents
		WHERE collection = ? AND json_extract(body, ?) = ?
		ORDER BY rowid
		LIMIT 1
	`, string(col), "$."+field, value)

	doc, err := scanDocument(row, col)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, apperrors.NewNotFound(string(col), field+"="+value)
	}
	return doc, err
}

// Insert stores a new document, generating its key when empty
func (s *SQLiteStore) Insert(ctx context.Context, doc Document) (Document, error) {
	if !doc.Collection.Valid() {
		return Document{}, apperrors.NewInvalidArgument("collection", string(doc.Collection))
	}
	if doc.Key == "" {
		doc.Key = newKey()
	}
	doc.Fields = StripMeta(doc.Fields)
	doc.Rev = newRev()
	now := time.Now().UTC()
	doc.Created, doc.Updated = now, now

	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return Document{}, fmt.Errorf("marshaling document: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO documents (collection, key, rev, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(doc.Collection), doc.Key, doc.Rev, string(body), formatTime(now), formatTime(now))
	if err != nil {
		if isSQLiteConstraint(err) {
			return Document{}, apperrors.NewConflict(string(doc.Collection), doc.Key, "unique constraint violated", err)
		}
		return Document{}, apperrors.NewStoreQueryFailed("insert "+string(doc.Collection), err)
	}

	return doc, nil
}

// Replace overwrites a document's fields, optionally guarded by revision
func (s *SQLiteStore) Replace(ctx context.Context, doc Document, expectRev string) (Document, error) {
	current, err := s.Get(ctx, doc.Collection, doc.Key)
	if err != nil {
		return Document{}, err
	}
	if expectRev != "" && expectRev != current.Rev {
		return Document{}, apperrors.NewConflict(string(doc.Collection), doc.Key, "revision mismatch", nil)
	}

	doc.Fields = StripMeta(doc.Fields)
	doc.Rev = newRev()
	doc.Created = current.Created
	doc.Updated = time.Now().UTC()

	body, err := json.Marshal(doc.Fields)
	if err != nil {
		return Document{}, fmt.Errorf("marshaling document: %w", err)
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE documents
		SET rev = ?, body = ?, updated_at = ?
		WHERE collection = ? AND key = ? AND rev = ?
	`, doc.Rev, string(body), formatTime(doc.Updated), string(doc.Collection), doc.Key, current.Rev)
	if err != nil {
		if isSQLiteConstraint(err) {
			return Document{}, apperrors.NewConflict(string(doc.Collection), doc.Key, "unique constraint violated", err)
		}
		return Document{}, apperrors.NewStoreQueryFailed("replace "+string(doc.Collection), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Document{}, apperrors.NewStoreQueryFailed("replace "+string(doc.Collection), err)
	}
	if affected == 0 {
		return Document{}, apperrors.NewConflict(string(doc.Collection), doc.Key, "revision changed concurrently", nil)
	}

	return doc, nil
}

// Remove deletes a document and every edge touching it
func (s *SQLiteStore) Remove(ctx context.Context, col Collection, key string) error {
	return s.Atomically(ctx, func(tx Store) error {
		ts := tx.(*SQLiteStore)

		result, err := ts.q.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND key = ?`, string(col), key)
		if err != nil {
			return apperrors.NewStoreQueryFailed("remove "+string(col), err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewStoreQueryFailed("remove "+string(col), err)
		}
		if affected == 0 {
			return apperrors.NewNotFound(string(col), key)
		}

		id := DocumentID(col, key)
		if _, err := ts.q.ExecContext(ctx, `DELETE FROM relations WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
			return apperrors.NewStoreQueryFailed("remove edges of "+id, err)
		}
		return nil
	})
}

// InsertEdge stores a new edge, generating its key when empty
func (s *SQLiteStore) InsertEdge(ctx context.Context, edge Edge) (Edge, error) {
	if edge.From == "" || edge.To == "" || edge.Type == "" {
		return Edge{}, apperrors.NewInvalidArgument("edge", "from, to and type are required")
	}
	if edge.Key == "" {
		edge.Key = newKey()
	}
	edge.Created = time.Now().UTC()

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO relations (key, from_id, to_id, type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, edge.Key, edge.From, edge.To, string(edge.Type), formatTime(edge.Created))
	if err != nil {
		if isSQLiteConstraint(err) {
			return Edge{}, apperrors.NewConflict(Relations, edge.Key, "duplicate key", err)
		}
		return Edge{}, apperrors.NewStoreQueryFailed("insert edge", err)
	}
	return edge, nil
}

// RemoveEdge deletes one edge by key
func (s *SQLiteStore) RemoveEdge(ctx context.Context, key string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM relations WHERE key = ?`, key)
	if err != nil {
		return apperrors.NewStoreQueryFailed("remove edge", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStoreQueryFailed("remove edge", err)
	}
	if affected == 0 {
		return apperrors.NewNotFound(Relations, key)
	}
	return nil
}

// Edges returns edges matching q in insertion order
func (s *SQLiteStore) Edges(ctx context.Context, q EdgeQuery) ([]Edge, error) {
	var conds []string
	var args []any
	if q.Key != "" {
		conds = append(conds, "key = ?")
		args = append(args, q.Key)
	}
	if q.From != "" {
		conds = append(conds, "from_id = ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		conds = append(conds, "to_id = ?")
		args = append(args, q.To)
	}
	if q.Touching != "" {
		conds = append(conds, "(from_id = ? OR to_id = ?)")
		args = append(args, q.Touching, q.Touching)
	}
	if q.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(q.Type))
	}

	query := `SELECT key, from_id, to_id, type, created_at FROM relations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreQueryFailed("query edges", err)
	}
	defer rows.Close()

	edges := []Edge{}
	for rows.Next() {
		var e Edge
		var edgeType, created string
		if err := rows.Scan(&e.Key, &e.From, &e.To, &edgeType, &created); err != nil {
			return nil, apperrors.NewStoreQueryFailed("scan edge", err)
		}
		e.Type = EdgeType(edgeType)
		e.Created = parseTime(created)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreQueryFailed("query edges", err)
	}
	return edges, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, col Collection) (Document, error) {
	var doc Document
	var body, created, updated string
	if err := row.Scan(&doc.Key, &doc.Rev, &body, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, err
		}
		return Document{}, apperrors.NewStoreQueryFailed("scan "+string(col), err)
	}

	doc.Collection = col
	doc.Created = parseTime(created)
	doc.Updated = parseTime(updated)
	if err := json.Unmarshal([]byte(body), &doc.Fields); err != nil {
		return Document{}, fmt.Errorf("unmarshaling %s/%s: %w", col, doc.Key, err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return doc, nil
}

func isSQLiteConstraint(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

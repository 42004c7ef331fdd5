// Package store persists documents and typed relation edges. Two backends
// implement Store: an embedded SQLite database and Neo4j.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection names a document collection.
type Collection string

const (
	Students Collection = "Student"
	Schools  Collection = "School"
	Topics   Collection = "Topic"
	Posts    Collection = "Post"
	Comments Collection = "Comment"
	Users    Collection = "User"
	Sessions Collection = "Session"
)

// Relations names the edge collection. It only appears in edge ids.
const Relations = "Relation"

// Collections lists every document collection in schema order.
var Collections = []Collection{Students, Schools, Topics, Posts, Comments, Users, Sessions}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Meta field names merged into document bodies on the wire.
const (
	KeyField = "_key"
	IDField  = "_id"
	RevField = "_rev"
)

// uniqueFields lists fields that must be unique within a collection.
var uniqueFields = map[Collection][]string{
	Users: {"username"},
}

// lookupFields lists non-unique fields that documents are resolved by.
var lookupFields = map[Collection][]string{
	Students: {"student_name"},
	Schools:  {"school_name"},
	Topics:   {"topic_text"},
}

// UniqueFields returns the fields that must be unique within c.
func UniqueFields(c Collection) []string {
	return uniqueFields[c]
}

// IndexedFields returns every field of c that backends index, unique first.
func IndexedFields(c Collection) []string {
	out := append([]string{}, uniqueFields[c]...)
	return append(out, lookupFields[c]...)
}

// storedTimeLayout is fixed width so stored timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Document is one stored entity.
type Document struct {
	Collection Collection
	Key        string
	Rev        string
	Fields     map[string]any
	Created    time.Time
	Updated    time.Time
}

// ID returns the graph-wide identifier "<Collection>/<Key>".
func (d Document) ID() string {
	return DocumentID(d.Collection, d.Key)
}

// JSON returns the document fields merged with its storage metadata.
func (d Document) JSON() map[string]any {
	out := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		out[k] = v
	}
	out[KeyField] = d.Key
	out[IDField] = d.ID()
	out[RevField] = d.Rev
	return out
}

// String returns the field as a string, or "" if absent or not a string.
func (d Document) String(field string) string {
	if s, ok := d.Fields[field].(string); ok {
		return s
	}
	return ""
}

// DocumentID builds a graph-wide identifier.
func DocumentID(c Collection, key string) string {
	return string(c) + "/" + key
}

// ParseID splits a graph-wide identifier into collection and key.
func ParseID(id string) (Collection, string, error) {
	col, key, ok := strings.Cut(id, "/")
	if !ok || key == "" || !Collection(col).Valid() {
		return "", "", fmt.Errorf("malformed document id %q", id)
	}
	return Collection(col), key, nil
}

// StripMeta returns a copy of fields without storage metadata.
func StripMeta(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case KeyField, IDField, RevField, "_oldRev":
			continue
		}
		out[k] = v
	}
	return out
}

// EdgeType is the kind of a relation edge.
type EdgeType string

const (
	PointsTo       EdgeType = "points_to"
	Friend         EdgeType = "friend"
	StudiesIn      EdgeType = "studies_in"
	InterestedIn   EdgeType = "interested_in"
	MakesPost      EdgeType = "makes_post"
	PostHasComment EdgeType = "post_has_comment"
	MakesComment   EdgeType = "makes_comment"
	LikesPost      EdgeType = "likes_post"
	LikesComment   EdgeType = "likes_comment"
)

// Edge is a directed, typed link between two documents.
type Edge struct {
	Key     string    `json:"_key"`
	From    string    `json:"_from"`
	To      string    `json:"_to"`
	Type    EdgeType  `json:"type"`
	Created time.Time `json:"-"`
}

// ID returns the edge's graph-wide identifier.
func (e Edge) ID() string {
	return Relations + "/" + e.Key
}

// JSON returns the wire form of the edge.
func (e Edge) JSON() map[string]any {
	return map[string]any{
		KeyField: e.Key,
		IDField:  e.ID(),
		"_from":  e.From,
		"_to":    e.To,
		"type":   string(e.Type),
	}
}

// EdgeQuery selects edges. Empty fields are ignored; the rest are ANDed.
// Touching matches edges whose either end is the given id.
type EdgeQuery struct {
	Key      string
	From     string
	To       string
	Touching string
	Type     EdgeType
}

// Store is the persistence contract shared by all backends.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// Atomically runs fn inside one transaction. Calls made on the Store
	// passed to fn join that transaction.
	Atomically(ctx context.Context, fn func(tx Store) error) error

	All(ctx context.Context, col Collection) ([]Document, error)
	Get(ctx context.Context, col Collection, key string) (Document, error)
	FindFirst(ctx context.Context, col Collection, field string, value string) (Document, error)
	Insert(ctx context.Context, doc Document) (Document, error)
	// Replace overwrites the stored fields. A non-empty expectRev must match
	// the stored revision.
	Replace(ctx context.Context, doc Document, expectRev string) (Document, error)
	// Remove deletes the document and every edge touching it.
	Remove(ctx context.Context, col Collection, key string) error

	InsertEdge(ctx context.Context, edge Edge) (Edge, error)
	RemoveEdge(ctx context.Context, key string) error
	Edges(ctx context.Context, q EdgeQuery) ([]Edge, error)
}

func newKey() string {
	return uuid.NewString()
}

func newRev() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// validField guards field names interpolated into JSON paths.
func validField(field string) bool {
	if field == "" {
		return false
	}
	for _, r := range field {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

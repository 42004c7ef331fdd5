package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "student-connect/backend/pkg/errors"
)

const neo4jConstraintFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Neo4jConfig holds Neo4j connection configuration
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jStore implements Store on Neo4j. Documents are (:Document:<Collection>)
// nodes carrying their body as a JSON string; edges are [:RELATION] relationships.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	tx       neo4j.ManagedTransaction
}

// NewNeo4j connects to Neo4j and verifies connectivity
func NewNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, apperrors.NewStoreConnectionFailed("neo4j", cfg.URI, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, apperrors.NewStoreConnectionFailed("neo4j", cfg.URI, err)
	}

	return NewNeo4jFromDriver(driver, cfg.Database), nil
}

// NewNeo4jFromDriver wraps an existing driver
func NewNeo4jFromDriver(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{driver: driver, database: database}
}

// Close closes the Neo4j driver connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// EnsureSchema creates uniqueness constraints and indexes
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.database})
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT document_id IF NOT EXISTS FOR (n:Document) REQUIRE n.id IS UNIQUE`,
		`CREATE INDEX relation_key IF NOT EXISTS FOR ()-[r:RELATION]-() ON (r.key)`,
		`CREATE INDEX relation_type IF NOT EXISTS FOR ()-[r:RELATION]-() ON (r.type)`,
	}
	for _, col := range Collections {
		for _, field := range UniqueFields(col) {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE CONSTRAINT %s_%s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
				strings.ToLower(string(col)), field, col, field,
			))
		}
		for _, field := range lookupFields[col] {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE INDEX %s_%s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
				strings.ToLower(string(col)), field, col, field,
			))
		}
	}

	for _, stmt := range stmts {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Atomically runs fn in one managed write transaction
func (s *Neo4jStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&Neo4jStore{driver: s.driver, database: s.database, tx: tx})
	})
	return err
}

func (s *Neo4jStore) execute(ctx context.Context, mode neo4j.AccessMode, work neo4j.ManagedTransactionWork) (any, error) {
	if s.tx != nil {
		return work(s.tx)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
	defer session.Close(ctx)

	if mode == neo4j.AccessModeRead {
		return session.ExecuteRead(ctx, work)
	}
	return session.ExecuteWrite(ctx, work)
}

const documentReturn = `
	RETURN n.key AS key, n.rev AS rev, n.body AS body,
	       n.created_at AS created_at, n.updated_at AS updated_at
`

// All returns every document of col in insertion order
func (s *Neo4jStore) All(ctx context.Context, col Collection) ([]Document, error) {
	if !col.Valid() {
		return nil, apperrors.NewInvalidArgument("collection", string(col))
	}

	result, err := s.execute(ctx, neo4j.AccessModeRead, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("MATCH (n:Document:%s)", col) + documentReturn + "ORDER BY created_at, key"
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return collectDocuments(ctx, res, col)
	})
	if err != nil {
		return nil, apperrors.NewStoreQueryFailed("list "+string(col), err)
	}
	return result.([]Document), nil
}

// Get returns one document by key
func (s *Neo4jStore) Get(ctx context.Context, col Collection, key string) (Document, error) {
	result, err := s.execute(ctx, neo4j.AccessModeRead, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n:Document {id: $id})"+documentReturn, map[string]any{
			"id": DocumentID(col, key),
		})
		if err != nil {
			return nil, err
		}
		return collectDocuments(ctx, res, col)
	})
	if err != nil {
		return Document{}, apperrors.NewStoreQueryFailed("get "+string(col), err)
	}

	docs := result.([]Document)
	if len(docs) == 0 {
		return Document{}, apperrors.NewNotFound(string(col), key)
	}
	return docs[0], nil
}

// FindFirst returns the earliest document whose top-level field equals value.
// Indexed fields are matched in Cypher; others are filtered after a scan.
func (s *Neo4jStore) FindFirst(ctx context.Context, col Collection, field, value string) (Document, error) {
	if !validField(field) || !col.Valid() {
		return Document{}, apperrors.NewInvalidArgument("field", field)
	}

	if !isIndexed(col, field) {
		docs, err := s.All(ctx, col)
		if err != nil {
			return Document{}, err
		}
		for _, doc := range docs {
			if doc.String(field) == value {
				return doc, nil
			}
		}
		return Document{}, apperrors.NewNotFound(string(col), field+"="+value)
	}

	result, err := s.execute(ctx, neo4j.AccessModeRead, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("MATCH (n:Document:%s) WHERE n[$field] = $value", col) +
			documentReturn + "ORDER BY created_at, key LIMIT 1"
		res, err := tx.Run(ctx, query, map[string]any{"field": field, "value": value})
		if err != nil {
			return nil, err
		}
		return collectDocuments(ctx, res, col)
	})
	if err != nil {
		return Document{}, apperrors.NewStoreQueryFailed("find "+string(col), err)
	}

	docs := result.([]Document)
	if len(docs) == 0 {
		return Document{}, apperrors.NewNotFound(string(col), field+"="+value)
	}
	return docs[0], nil
}

// Insert stores a new document node
func (s *Neo4jStore) Insert(ctx context.Context, doc Document) (Document, error) {
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

	_, err = s.execute(ctx, neo4j.AccessModeWrite, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			CREATE (n:Document:%s {
				id: $id,
				key: $key,
				collection: $collection,
				rev: $rev,
				body: $body,
				created_at: $created,
				updated_at: $updated
			})
			SET n += $indexed
		`, doc.Collection)

		res, err := tx.Run(ctx, query, map[string]any{
			"id":         doc.ID(),
			"key":        doc.Key,
			"collection": string(doc.Collection),
			"rev":        doc.Rev,
			"body":       string(body),
			"created":    formatTime(now),
			"updated":    formatTime(now),
			"indexed":    indexedProps(doc),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		if isNeo4jConstraint(err) {
			return Document{}, apperrors.NewConflict(string(doc.Collection), doc.Key, "unique constraint violated", err)
		}
		return Document{}, apperrors.NewStoreQueryFailed("insert "+string(doc.Collection), err)
	}
	return doc, nil
}

// Replace overwrites a document's body, optionally guarded by revision
func (s *Neo4jStore) Replace(ctx context.Context, doc Document, expectRev string) (Document, error) {
	var out Document
	err := s.Atomically(ctx, func(tx Store) error {
		current, err := tx.Get(ctx, doc.Collection, doc.Key)
		if err != nil {
			return err
		}
		if expectRev != "" && expectRev != current.Rev {
			return apperrors.NewConflict(string(doc.Collection), doc.Key, "revision mismatch", nil)
		}

		doc.Fields = StripMeta(doc.Fields)
		doc.Rev = newRev()
		doc.Created = current.Created
		doc.Updated = time.Now().UTC()

		body, err := json.Marshal(doc.Fields)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}

		ts := tx.(*Neo4jStore)
		res, err := ts.tx.Run(ctx, `
			MATCH (n:Document {id: $id})
			WHERE n.rev = $current
			SET n.rev = $rev, n.body = $body, n.updated_at = $updated
			SET n += $indexed
			RETURN n.key AS key
		`, map[string]any{
			"id":      doc.ID(),
			"current": current.Rev,
			"rev":     doc.Rev,
			"body":    string(body),
			"updated": formatTime(doc.Updated),
			"indexed": indexedProps(doc),
		})
		if err != nil {
			if isNeo4jConstraint(err) {
				return apperrors.NewConflict(string(doc.Collection), doc.Key, "unique constraint violated", err)
			}
			return apperrors.NewStoreQueryFailed("replace "+string(doc.Collection), err)
		}
		records, err := res.Collect(ctx)
		if err != nil {
			if isNeo4jConstraint(err) {
				return apperrors.NewConflict(string(doc.Collection), doc.Key, "unique constraint violated", err)
			}
			return apperrors.NewStoreQueryFailed("replace "+string(doc.Collection), err)
		}
		if len(records) == 0 {
			return apperrors.NewConflict(string(doc.Collection), doc.Key, "revision changed concurrently", nil)
		}

		out = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return out, nil
}

// Remove detaches and deletes a document node
func (s *Neo4jStore) Remove(ctx context.Context, col Collection, key string) error {
	result, err := s.execute(ctx, neo4j.AccessModeWrite, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n:Document {id: $id}) DETACH DELETE n`, map[string]any{
			"id": DocumentID(col, key),
		})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		return apperrors.NewStoreQueryFailed("remove "+string(col), err)
	}
	if result.(int) == 0 {
		return apperrors.NewNotFound(string(col), key)
	}
	return nil
}

// InsertEdge creates a RELATION between two existing document nodes
func (s *Neo4jStore) InsertEdge(ctx context.Context, edge Edge) (Edge, error) {
	if edge.From == "" || edge.To == "" || edge.Type == "" {
		return Edge{}, apperrors.NewInvalidArgument("edge", "from, to and type are required")
	}
	if edge.Key == "" {
		edge.Key = newKey()
	}
	edge.Created = time.Now().UTC()

	result, err := s.execute(ctx, neo4j.AccessModeWrite, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Document {id: $from})
			MATCH (b:Document {id: $to})
			CREATE (a)-[r:RELATION {key: $key, type: $type, created_at: $created}]->(b)
			RETURN r.key AS key
		`, map[string]any{
			"from":    edge.From,
			"to":      edge.To,
			"key":     edge.Key,
			"type":    string(edge.Type),
			"created": formatTime(edge.Created),
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return len(records), nil
	})
	if err != nil {
		return Edge{}, apperrors.NewStoreQueryFailed("insert edge", err)
	}
	if result.(int) == 0 {
		return Edge{}, apperrors.NewNotFound(Relations, edge.From+" -> "+edge.To)
	}
	return edge, nil
}

// RemoveEdge deletes one relationship by key
func (s *Neo4jStore) RemoveEdge(ctx context.Context, key string) error {
	result, err := s.execute(ctx, neo4j.AccessModeWrite, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH ()-[r:RELATION {key: $key}]->() DELETE r`, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().RelationshipsDeleted(), nil
	})
	if err != nil {
		return apperrors.NewStoreQueryFailed("remove edge", err)
	}
	if result.(int) == 0 {
		return apperrors.NewNotFound(Relations, key)
	}
	return nil
}

// Edges returns relationships matching q in insertion order
func (s *Neo4jStore) Edges(ctx context.Context, q EdgeQuery) ([]Edge, error) {
	var conds []string
	params := map[string]any{}
	if q.Key != "" {
		conds = append(conds, "r.key = $key")
		params["key"] = q.Key
	}
	if q.From != "" {
		conds = append(conds, "a.id = $from")
		params["from"] = q.From
	}
	if q.To != "" {
		conds = append(conds, "b.id = $to")
		params["to"] = q.To
	}
	if q.Touching != "" {
		conds = append(conds, "(a.id = $touching OR b.id = $touching)")
		params["touching"] = q.Touching
	}
	if q.Type != "" {
		conds = append(conds, "r.type = $type")
		params["type"] = string(q.Type)
	}

	query := `MATCH (a:Document)-[r:RELATION]->(b:Document)`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += `
		RETURN r.key AS key, a.id AS from, b.id AS to, r.type AS type, r.created_at AS created_at
		ORDER BY created_at, key
	`

	result, err := s.execute(ctx, neo4j.AccessModeRead, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		edges := []Edge{}
		for res.Next(ctx) {
			record := res.Record()
			edges = append(edges, Edge{
				Key:     recordString(record, "key"),
				From:    recordString(record, "from"),
				To:      recordString(record, "to"),
				Type:    EdgeType(recordString(record, "type")),
				Created: parseTime(recordString(record, "created_at")),
			})
		}
		return edges, res.Err()
	})
	if err != nil {
		return nil, apperrors.NewStoreQueryFailed("query edges", err)
	}
	return result.([]Edge), nil
}

func collectDocuments(ctx context.Context, res neo4j.ResultWithContext, col Collection) ([]Document, error) {
	docs := []Document{}
	for res.Next(ctx) {
		record := res.Record()
		doc := Document{
			Collection: col,
			Key:        recordString(record, "key"),
			Rev:        recordString(record, "rev"),
			Created:    parseTime(recordString(record, "created_at")),
			Updated:    parseTime(recordString(record, "updated_at")),
		}
		if err := json.Unmarshal([]byte(recordString(record, "body")), &doc.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling %s/%s: %w", col, doc.Key, err)
		}
		if doc.Fields == nil {
			doc.Fields = map[string]any{}
		}
		docs = append(docs, doc)
	}
	return docs, res.Err()
}

// indexedProps hoists indexed string fields onto the node. Absent fields map
// to nil so that SET += removes stale properties.
func indexedProps(doc Document) map[string]any {
	props := map[string]any{}
	for _, field := range IndexedFields(doc.Collection) {
		if v, ok := doc.Fields[field].(string); ok {
			props[field] = v
		} else {
			props[field] = nil
		}
	}
	return props
}

func isIndexed(col Collection, field string) bool {
	for _, f := range IndexedFields(col) {
		if f == field {
			return true
		}
	}
	return false
}

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func isNeo4jConstraint(err error) bool {
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		return nerr.Code == neo4jConstraintFailed
	}
	return false
}

package store

import "fmt"

// SQLite schema DDL constants

const schemaDocuments = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    key TEXT NOT NULL,
    rev TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (collection, key)
)`

const schemaRelations = `
CREATE TABLE IF NOT EXISTS relations (
    key TEXT PRIMARY KEY,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    type TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

// Adjacency indexes: every traversal is a lookup by one endpoint and a type.
const indexRelationsFromType = `CREATE INDEX IF NOT EXISTS idx_relations_from_type ON relations(from_id, type)`
const indexRelationsToType = `CREATE INDEX IF NOT EXISTS idx_relations_to_type ON relations(to_id, type)`
const indexRelationsType = `CREATE INDEX IF NOT EXISTS idx_relations_type ON relations(type)`

// uniqueIndex enforces a unique field within one collection.
func uniqueIndex(col Collection, field string) string {
	return fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_%s ON documents(json_extract(body, '$.%s')) WHERE collection = '%s'`,
		col, field, field, col,
	)
}

// lookupIndex speeds up resolving documents by a non-unique field.
func lookupIndex(col Collection, field string) string {
	return fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_%s ON documents(json_extract(body, '$.%s')) WHERE collection = '%s'`,
		col, field, field, col,
	)
}

func allPragmas() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
}

func allSchemaStatements() []string {
	stmts := []string{
		schemaDocuments,
		schemaRelations,
		indexRelationsFromType,
		indexRelationsToType,
		indexRelationsType,
	}
	for _, col := range Collections {
		for _, field := range UniqueFields(col) {
			stmts = append(stmts, uniqueIndex(col, field))
		}
		for _, field := range lookupFields[col] {
			stmts = append(stmts, lookupIndex(col, field))
		}
	}
	return stmts
}

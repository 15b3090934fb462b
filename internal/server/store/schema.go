package store

// SQLite schema DDL constants

const schemaResources = `
CREATE TABLE IF NOT EXISTS resources (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    source_type TEXT NOT NULL,
    specialty TEXT,
    difficulty TEXT,
    content_type TEXT NOT NULL,
    source_id TEXT,
    cached_content TEXT,
    last_updated DATETIME NOT NULL,
    access_count INTEGER NOT NULL DEFAULT 0
)`

const schemaUserDocuments = `
CREATE TABLE IF NOT EXISTS user_documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    upload_date DATETIME NOT NULL
)`

// Index definitions
const indexResourcesAccess = `CREATE INDEX IF NOT EXISTS idx_resources_access_count ON resources(access_count DESC)`
const indexResourcesSpecialty = `CREATE INDEX IF NOT EXISTS idx_resources_specialty ON resources(specialty)`
const indexResourcesContentType = `CREATE INDEX IF NOT EXISTS idx_resources_content_type ON resources(content_type)`
const indexResourcesSourceType = `CREATE INDEX IF NOT EXISTS idx_resources_source_type ON resources(source_type)`

// SQLite pragmas: WAL keeps concurrent readers off the writers' lock,
// busy_timeout serializes the per-id read-and-increment without spurious
// SQLITE_BUSY errors. The pragmas ride on the DSN so the driver applies them
// to every pooled connection, not just the one that ran an Exec.
func dsn(path string) string {
	return path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=synchronous(NORMAL)"
}

// allSchemaStatements returns all schema DDL in order
func allSchemaStatements() []string {
	return []string{
		schemaResources,
		schemaUserDocuments,
		indexResourcesAccess,
		indexResourcesSpecialty,
		indexResourcesContentType,
		indexResourcesSourceType,
	}
}

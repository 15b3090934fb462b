package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// DefaultSearchLimit bounds searches that do not specify a limit.
const DefaultSearchLimit = 10

// Store is the persistent resource store backed by SQLite. It also owns the
// user document table and keeps its resource mirror consistent.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Open opens (creating if needed) the content database at path.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Verify connectivity
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &Store{db: db, path: path, log: log}, nil
}

// DB exposes the underlying handle so other repositories (the topic graph's
// SQLite backend) can share one database file.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

// Put upserts a resource by id. An existing record keeps its access_count;
// every other field is replaced and last_updated is refreshed. A new record
// starts at access_count 0.
func (s *Store) Put(ctx context.Context, r *content.Resource) error {
	if err := r.Validate(); err != nil {
		return err
	}

	var cached any
	if r.Content != nil {
		data, err := json.Marshal(r.Content)
		if err != nil {
			return fmt.Errorf("marshaling cached content: %w", err)
		}
		cached = string(data)
	}

	query := `
		INSERT INTO resources (id, title, source_type, specialty, difficulty, content_type, source_id, cached_content, last_updated, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_type = excluded.source_type,
			specialty = excluded.specialty,
			difficulty = excluded.difficulty,
			content_type = excluded.content_type,
			source_id = excluded.source_id,
			cached_content = excluded.cached_content,
			last_updated = excluded.last_updated
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Title,
		string(r.Source),
		nullable(r.Specialty),
		nullable(string(r.Difficulty)),
		string(r.Type),
		nullable(r.SourceID),
		cached,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: upserting resource %s: %v", content.ErrStorage, r.ID, err)
	}
	return nil
}

// Get returns the resource with the given id, or (nil, nil) when unknown.
// A hit increments access_count by exactly one; the increment and the read
// run in one transaction so concurrent gets never lose a count.
func (s *Store) Get(ctx context.Context, id string) (*content.Resource, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE resources SET access_count = access_count + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: incrementing access count for %s: %v", content.ErrStorage, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	if affected == 0 {
		return nil, nil
	}

	row := tx.QueryRowContext(ctx, selectResource+` WHERE id = ?`, id)
	r, err := scanResource(row)
	if err != nil {
		return nil, fmt.Errorf("%w: reading resource %s: %v", content.ErrStorage, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	return r, nil
}

// Query is a conjunctive resource search. Text matches by substring against
// the title or the serialized cached content.
type Query struct {
	Text        string
	Specialty   string
	Difficulty  content.Difficulty
	ContentType content.ContentType
	Limit       int
}

// Search returns matching resources ordered by access_count descending,
// truncated to the query limit.
func (s *Store) Search(ctx context.Context, q Query) ([]content.Resource, error) {
	query := selectResource + ` WHERE 1=1`
	var args []any

	if q.Text != "" {
		query += ` AND (title LIKE ? OR cached_content LIKE ?)`
		like := "%" + q.Text + "%"
		args = append(args, like, like)
	}
	if q.Specialty != "" {
		query += ` AND specialty = ?`
		args = append(args, q.Specialty)
	}
	if q.Difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, string(q.Difficulty))
	}
	if q.ContentType != "" {
		query += ` AND content_type = ?`
		args = append(args, string(q.ContentType))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query += ` ORDER BY access_count DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: searching resources: %v", content.ErrStorage, err)
	}
	defer rows.Close()

	var out []content.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	return out, nil
}

// PutUserDocument stores an uploaded document and its resource mirror in one
// transaction, so the two tables never disagree about id or title.
func (s *Store) PutUserDocument(ctx context.Context, doc *content.UserDocument) error {
	if doc.ID == "" || doc.Title == "" || doc.Content == "" {
		return fmt.Errorf("user document requires id, title and content")
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}

	mirror := doc.AsResource()
	cached, err := json.Marshal(mirror.Content)
	if err != nil {
		return fmt.Errorf("marshaling document content: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_documents (id, title, content, upload_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content
	`, doc.ID, doc.Title, doc.Content, doc.UploadDate.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: inserting user document %s: %v", content.ErrStorage, doc.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resources (id, title, source_type, specialty, difficulty, content_type, source_id, cached_content, last_updated, access_count)
		VALUES (?, ?, ?, NULL, NULL, ?, NULL, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			cached_content = excluded.cached_content,
			last_updated = excluded.last_updated
	`, doc.ID, doc.Title, string(content.SourceUserProvided), string(content.TypeDocument),
		string(cached), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: mirroring user document %s: %v", content.ErrStorage, doc.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	return nil
}

// GetUserDocument returns the document with the given id, or (nil, nil) when
// unknown. Document reads do not touch the mirror's access count.
func (s *Store) GetUserDocument(ctx context.Context, id string) (*content.UserDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, upload_date FROM user_documents WHERE id = ?`, id)

	var doc content.UserDocument
	var uploaded string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &uploaded)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading user document %s: %v", content.ErrStorage, id, err)
	}
	if t, err := time.Parse(time.RFC3339, uploaded); err == nil {
		doc.UploadDate = t
	}
	return &doc, nil
}

const selectResource = `
	SELECT id, title, source_type, specialty, difficulty, content_type, source_id, cached_content, last_updated, access_count
	FROM resources`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*content.Resource, error) {
	var r content.Resource
	var specialty, difficulty, sourceID, cached sql.NullString
	var sourceType, contentType, updated string

	if err := row.Scan(&r.ID, &r.Title, &sourceType, &specialty, &difficulty,
		&contentType, &sourceID, &cached, &updated, &r.AccessCount); err != nil {
		return nil, err
	}

	r.Source = content.SourceType(sourceType)
	r.Type = content.ContentType(contentType)
	r.Specialty = specialty.String
	r.Difficulty = content.Difficulty(difficulty.String)
	r.SourceID = sourceID.String
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		r.LastUpdated = t
	}

	if cached.Valid && cached.String != "" {
		payload, err := content.DecodePayload(r.Type, []byte(cached.String))
		if err != nil {
			return nil, err
		}
		r.Content = payload
	}
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

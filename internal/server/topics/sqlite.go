package topics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

const schemaTopicMappings = `
CREATE TABLE IF NOT EXISTS topic_mappings (
    topic TEXT NOT NULL,
    parent_topic TEXT NOT NULL,
    specialty TEXT,
    description TEXT,
    PRIMARY KEY (topic, parent_topic)
)`

const indexTopicMappingsParent = `CREATE INDEX IF NOT EXISTS idx_topic_mappings_parent ON topic_mappings(parent_topic)`

// SQLiteRepository implements Repository on the content database. It shares
// the resource store's handle, so pragmas are already applied.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLite creates the topic mapping schema on db and returns the repository.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLiteRepository, error) {
	for _, stmt := range []string{schemaTopicMappings, indexTopicMappingsParent} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating topic schema: %w", err)
		}
	}
	return &SQLiteRepository{db: db}, nil
}

// Close is a no-op; the shared database handle is owned by the store.
func (r *SQLiteRepository) Close(ctx context.Context) error { return nil }

// Add upserts a topic mapping edge.
func (r *SQLiteRepository) Add(ctx context.Context, m content.TopicMapping) error {
	if m.Topic == "" || m.ParentTopic == "" {
		return fmt.Errorf("topic mapping requires topic and parent_topic")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO topic_mappings (topic, parent_topic, specialty, description)
		VALUES (?, ?, ?, ?)
	`, m.Topic, m.ParentTopic, m.Specialty, m.Description)
	if err != nil {
		return fmt.Errorf("%w: inserting topic mapping: %v", content.ErrStorage, err)
	}
	return nil
}

// Related performs the one-hop traversal. No cycle guard is needed: each leg
// is a single query regardless of cyclicity in the edge set.
func (r *SQLiteRepository) Related(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	parents, err := r.column(ctx,
		`SELECT parent_topic FROM topic_mappings WHERE topic = ?`, topic)
	if err != nil {
		return nil, err
	}

	children, err := r.column(ctx,
		`SELECT topic FROM topic_mappings WHERE parent_topic = ? AND topic != ?`, topic, topic)
	if err != nil {
		return nil, err
	}

	// Siblings are capped at limit before the merge.
	siblings, err := r.column(ctx, `
		SELECT tm2.topic
		FROM topic_mappings tm1
		JOIN topic_mappings tm2 ON tm1.parent_topic = tm2.parent_topic
		WHERE tm1.topic = ? AND tm2.topic != ?
		LIMIT ?
	`, topic, topic, limit)
	if err != nil {
		return nil, err
	}

	return mergeRelated(parents, children, siblings, limit), nil
}

func (r *SQLiteRepository) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying topic mappings: %v", content.ErrStorage, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrStorage, err)
	}
	return out, nil
}

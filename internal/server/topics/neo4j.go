package topics

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// Neo4jConfig holds Neo4j connection configuration.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jRepository implements Repository on a Neo4j graph. Topics become
// (:Topic {name}) nodes and mappings CHILD_OF relationships.
type Neo4jRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4j connects to Neo4j and verifies connectivity.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	db := cfg.Database
	if db == "" {
		db = "neo4j"
	}
	return &Neo4jRepository{driver: driver, database: db}, nil
}

// Close closes the Neo4j connection.
func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Add upserts a topic mapping edge.
func (r *Neo4jRepository) Add(ctx context.Context, m content.TopicMapping) error {
	if m.Topic == "" || m.ParentTopic == "" {
		return fmt.Errorf("topic mapping requires topic and parent_topic")
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Topic {name: $topic})
			MERGE (p:Topic {name: $parent})
			MERGE (t)-[e:CHILD_OF]->(p)
			SET e.specialty = $specialty, e.description = $description
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"topic":       m.Topic,
			"parent":      m.ParentTopic,
			"specialty":   m.Specialty,
			"description": m.Description,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: merging topic mapping: %v", content.ErrStorage, err)
	}
	return nil
}

// Related performs the one-hop traversal. The three legs run as separate
// reads so the parents/children/siblings ordering matches the SQLite backend
// exactly, sibling pre-cap included.
func (r *Neo4jRepository) Related(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	parents, err := r.names(ctx, `
		MATCH (t:Topic {name: $topic})-[:CHILD_OF]->(p:Topic)
		RETURN p.name AS name
	`, map[string]any{"topic": topic})
	if err != nil {
		return nil, err
	}

	children, err := r.names(ctx, `
		MATCH (c:Topic)-[:CHILD_OF]->(t:Topic {name: $topic})
		WHERE c.name <> $topic
		RETURN c.name AS name
	`, map[string]any{"topic": topic})
	if err != nil {
		return nil, err
	}

	siblings, err := r.names(ctx, `
		MATCH (t:Topic {name: $topic})-[:CHILD_OF]->(:Topic)<-[:CHILD_OF]-(s:Topic)
		WHERE s.name <> $topic
		RETURN s.name AS name
		LIMIT $limit
	`, map[string]any{"topic": topic, "limit": limit})
	if err != nil {
		return nil, err
	}

	return mergeRelated(parents, children, siblings, limit), nil
}

func (r *Neo4jRepository) names(ctx context.Context, query string, params map[string]any) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		var names []string
		for res.Next(ctx) {
			if v, ok := res.Record().Get("name"); ok {
				if name, ok := v.(string); ok {
					names = append(names, name)
				}
			}
		}
		return names, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying topic graph: %v", content.ErrStorage, err)
	}
	return result.([]string), nil
}

package topics

import (
	"context"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// DefaultRelatedLimit bounds related-topic queries that do not specify one.
const DefaultRelatedLimit = 5

// Repository is the topic graph storage backend. Both SQLite and Neo4j
// implement this interface.
type Repository interface {
	// Add upserts a (topic, parent_topic) edge.
	Add(ctx context.Context, m content.TopicMapping) error

	// Related returns topics one hop away from topic: parents first, then
	// children, then siblings, deduplicated in first-seen order and truncated
	// to limit. The sibling sub-query is independently capped at limit before
	// the merge; callers depend on that ordering contract.
	Related(ctx context.Context, topic string, limit int) ([]string, error)

	Close(ctx context.Context) error
}

// mergeRelated combines the three traversal legs into the final result:
// dedup(parents ++ children ++ siblings) truncated to limit.
func mergeRelated(parents, children, siblings []string, limit int) []string {
	seen := make(map[string]struct{})
	related := make([]string, 0, limit)
	for _, group := range [][]string{parents, children, siblings} {
		for _, t := range group {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			related = append(related, t)
			if len(related) == limit {
				return related
			}
		}
	}
	return related
}

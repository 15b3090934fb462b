package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
	"github.com/ryoureddy/medadapt-content-server/internal/server/sources"
	"github.com/ryoureddy/medadapt-content-server/internal/server/store"
)

// DefaultMaxResults bounds searches that do not specify a limit.
const DefaultMaxResults = 10

// Store is the slice of the resource store the engine depends on.
type Store interface {
	Put(ctx context.Context, r *content.Resource) error
	Get(ctx context.Context, id string) (*content.Resource, error)
	Search(ctx context.Context, q store.Query) ([]content.Resource, error)
	GetUserDocument(ctx context.Context, id string) (*content.UserDocument, error)
}

// Filters narrows a content search. All filters are conjunctive.
type Filters struct {
	Specialty   string
	Difficulty  content.Difficulty
	ContentType content.ContentType
}

// Engine orchestrates cache-first search and ID-routed detail fetch across
// the resource store and the configured source adapters.
type Engine struct {
	store    Store
	adapters []sources.Adapter
	bySource map[content.SourceType]sources.Adapter
	log      *zap.Logger
}

// New creates an engine. The adapter slice order is the fixed source priority
// used to allocate remote result quotas and to order merged results.
func New(st Store, adapters []sources.Adapter, log *zap.Logger) *Engine {
	bySource := make(map[content.SourceType]sources.Adapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}
	return &Engine{store: st, adapters: adapters, bySource: bySource, log: log}
}

// SearchContent resolves a query cache-first. When the local store already
// satisfies maxResults the adapters are never called; otherwise the remaining
// quota is split across the adapters in priority order by integer division,
// remainder to the last adapter. Every adapter record is persisted before it
// is included in the response. Adapter failures contribute zero results and
// never abort the search.
func (e *Engine) SearchContent(ctx context.Context, query string, f Filters, maxResults int) ([]content.Resource, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	local, err := e.store.Search(ctx, store.Query{
		Text:        query,
		Specialty:   f.Specialty,
		Difficulty:  f.Difficulty,
		ContentType: f.ContentType,
		Limit:       maxResults,
	})
	if err != nil {
		return nil, err
	}
	if len(local) >= maxResults {
		return local[:maxResults], nil
	}

	remaining := maxResults - len(local)
	results := local
	for i, a := range e.adapters {
		quota := adapterQuota(remaining, len(e.adapters), i)
		if quota == 0 {
			continue
		}

		found, err := a.Search(ctx, query, quota)
		if err != nil {
			e.log.Warn("adapter search failed, contributing zero results",
				zap.String("source", string(a.Source())),
				zap.String("query", query),
				zap.Error(err))
			continue
		}

		for j := range found {
			if err := e.store.Put(ctx, &found[j]); err != nil {
				return nil, err
			}
			results = append(results, found[j])
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// adapterQuota splits remaining across n adapters: integer division, with the
// division remainder assigned to the last adapter in priority order.
func adapterQuota(remaining, n, index int) int {
	if n == 0 {
		return 0
	}
	base := remaining / n
	if index == n-1 {
		return remaining - base*(n-1)
	}
	return base
}

// GetResourceDetail resolves a canonical id to a fully populated resource.
// A stored resource with cached content is returned as-is; otherwise the id
// is parsed and routed to the originating adapter, and a successful fetch is
// written through before returning. Fetch failures are surfaced and never
// persisted.
func (e *Engine) GetResourceDetail(ctx context.Context, id string) (*content.Resource, error) {
	cached, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Content != nil {
		return cached, nil
	}

	ref, err := content.ParseID(id)
	if err != nil {
		return nil, err
	}

	var fetched *content.Resource
	switch ref.Source {
	case content.SourceUserProvided:
		doc, err := e.store.GetUserDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, fmt.Errorf("%w: user document %s", content.ErrNotFound, id)
		}
		fetched = doc.AsResource()

	default:
		adapter, ok := e.bySource[ref.Source]
		if !ok {
			return nil, fmt.Errorf("%w: no adapter configured for source %s", content.ErrAdapterUnavailable, ref.Source)
		}
		fetched, err = adapter.FetchDetail(ctx, ref)
		if err != nil {
			return nil, err
		}
	}

	if err := e.store.Put(ctx, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

package query

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tracery-ai/tracery/pkg/ai"
	"github.com/tracery-ai/tracery/pkg/common"
	"github.com/tracery-ai/tracery/pkg/logger"
	"github.com/tracery-ai/tracery/pkg/store"
)

const (
	// DefaultTopK is the entity result count used when the caller does not
	// supply one.
	DefaultTopK = 5

	defaultCommunityTopK  = 3
	defaultNeighborHops   = 2
	defaultPathLength     = 3
	defaultSourceEntities = 3
)

// Retriever coordinates hybrid retrieval over the vector index and the
// graph store: vector similarity anchors the entities, bounded graph
// traversal adds neighbor and path reasoning, and provenance lookups attach
// source attribution.
//
// A Retriever holds no per-call state beyond its injected store handles;
// concurrent Retrieve calls are safe without external synchronization.
type Retriever struct {
	embedder ai.EmbeddingClient
	index    store.VectorIndex
	graph    store.GraphStore

	communityTopK  int
	neighborHops   int
	pathLength     int
	sourceEntities int
}

// NewRetrieverParams contains the collaborators and tunables for a
// Retriever. Embedder, Index, and Graph are required. The remaining knobs
// default to the standard bounds: 3 community hits, 2 neighbor hops, path
// length 3, provenance from the top 3 entities.
type NewRetrieverParams struct {
	Embedder ai.EmbeddingClient
	Index    store.VectorIndex
	Graph    store.GraphStore

	CommunityTopK  int
	NeighborHops   int
	PathLength     int
	SourceEntities int
}

// NewRetriever creates a Retriever from explicitly injected store clients.
// The caller owns the lifecycle of the clients and of the Retriever itself;
// there is no shared package-level instance.
func NewRetriever(params NewRetrieverParams) (*Retriever, error) {
	if params.Embedder == nil {
		return nil, fmt.Errorf("query: embedding client is required")
	}
	if params.Index == nil {
		return nil, fmt.Errorf("query: vector index is required")
	}
	if params.Graph == nil {
		return nil, fmt.Errorf("query: graph store is required")
	}

	r := &Retriever{
		embedder:       params.Embedder,
		index:          params.Index,
		graph:          params.Graph,
		communityTopK:  params.CommunityTopK,
		neighborHops:   params.NeighborHops,
		pathLength:     params.PathLength,
		sourceEntities: params.SourceEntities,
	}
	if r.communityTopK <= 0 {
		r.communityTopK = defaultCommunityTopK
	}
	if r.neighborHops <= 0 {
		r.neighborHops = defaultNeighborHops
	}
	if r.pathLength <= 0 {
		r.pathLength = defaultPathLength
	}
	if r.sourceEntities <= 0 {
		r.sourceEntities = defaultSourceEntities
	}
	return r, nil
}

// Retrieve runs one hybrid retrieval. The entity search is the anchor and
// its failure is fatal; the community search is enrichment and degrades to
// an empty list on failure. Graph traversal failures always propagate;
// a partially-filled result is never returned as success.
//
// Rankings are returned exactly as the vector index ordered them; "top"
// always means index position, never a recomputed threshold.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, topK int, includeGraphReasoning bool) (*common.RetrievalResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", store.ErrInvalidBound, topK)
	}
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, fmt.Errorf("embed query: %w", ai.ErrEmptyInput)
	}

	vector, err := r.embedder.GenerateEmbedding(ctx, []byte(queryText))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	result := &common.RetrievalResult{
		Query:       queryText,
		Entities:    []common.Entity{},
		Communities: []common.Community{},
		Sources:     []common.SourceRef{},
	}

	// The entity and community searches are independent of each other and
	// run concurrently. Only the entity search can fail the group.
	eg, eCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hits, err := r.index.Search(eCtx, store.CollectionEntities, vector, topK)
		if err != nil {
			return fmt.Errorf("entity search: %w", err)
		}
		result.Entities = entitiesFromHits(hits)
		return nil
	})
	eg.Go(func() error {
		hits, err := r.index.Search(eCtx, store.CollectionCommunities, vector, r.communityTopK)
		if err != nil {
			// Communities are enrichment, not the anchor: degrade to empty
			// instead of aborting the retrieval.
			logger.Warn("community search degraded to empty", "err", err)
			return nil
		}
		result.Communities = communitiesFromHits(hits)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Everything below depends only on the search results and runs
	// concurrently: summaries per community hit, neighbor expansion of the
	// top entity, paths between the top two, provenance for the top three.
	gg, gCtx := errgroup.WithContext(ctx)

	for i := range result.Communities {
		community := &result.Communities[i]
		gg.Go(func() error {
			summary, err := r.graph.CommunitySummary(gCtx, community.ID)
			if err != nil {
				return fmt.Errorf("community %d summary: %w", community.ID, err)
			}
			community.Summary = summary
			return nil
		})
	}

	if includeGraphReasoning && len(result.Entities) > 0 {
		top := result.Entities[0].Name
		gg.Go(func() error {
			neighbors, err := r.graph.Neighbors(gCtx, top, r.neighborHops)
			if err != nil {
				return fmt.Errorf("expand neighbors of %q: %w", top, err)
			}
			result.Neighbors = &common.NeighborExpansion{Entity: top, Neighbors: neighbors}
			return nil
		})
	}

	if len(result.Entities) >= 2 {
		from, to := result.Entities[0].Name, result.Entities[1].Name
		gg.Go(func() error {
			paths, err := r.graph.ShortestPaths(gCtx, from, to, r.pathLength)
			if err != nil {
				return fmt.Errorf("paths between %q and %q: %w", from, to, err)
			}
			result.Paths = &common.PathSearch{From: from, To: to, Paths: paths}
			return nil
		})
	}

	sourceCount := min(r.sourceEntities, len(result.Entities))
	refsByRank := make([][]common.SourceRef, sourceCount)
	for i := 0; i < sourceCount; i++ {
		name := result.Entities[i].Name
		gg.Go(func() error {
			refs, err := r.graph.SourceDocuments(gCtx, name)
			if err != nil {
				return fmt.Errorf("source documents of %q: %w", name, err)
			}
			refsByRank[i] = refs
			return nil
		})
	}

	if err := gg.Wait(); err != nil {
		return nil, err
	}

	// Merge provenance in entity-rank order, first seen document+page wins.
	seen := make(map[string]struct{})
	for _, refs := range refsByRank {
		for _, ref := range refs {
			key := ref.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result.Sources = append(result.Sources, ref)
		}
	}

	return result, nil
}

// SearchAndFormat composes Retrieve and Format into the single-string shape
// tool-calling frameworks bind to.
func (r *Retriever) SearchAndFormat(ctx context.Context, queryText string, topK int, includeReasoning bool) (string, error) {
	result, err := r.Retrieve(ctx, queryText, topK, includeReasoning)
	if err != nil {
		return "", err
	}
	return Format(result), nil
}

func entitiesFromHits(hits []store.Hit) []common.Entity {
	entities := make([]common.Entity, 0, len(hits))
	for _, hit := range hits {
		entities = append(entities, common.Entity{
			Name:        fieldString(hit.Fields, "name"),
			Layer:       common.Layer(fieldString(hit.Fields, "layer")),
			CommunityID: fieldInt64Ptr(hit.Fields, "community_id"),
			NodeID:      fieldString(hit.Fields, "node_id"),
			Score:       hit.Score,
		})
	}
	return entities
}

func communitiesFromHits(hits []store.Hit) []common.Community {
	communities := make([]common.Community, 0, len(hits))
	for _, hit := range hits {
		communities = append(communities, common.Community{
			ID:    fieldInt64(hit.Fields, "community_id"),
			Size:  fieldInt64(hit.Fields, "size"),
			Score: hit.Score,
		})
	}
	return communities
}

func fieldString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func fieldInt64(fields map[string]any, key string) int64 {
	switch n := fields[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func fieldInt64Ptr(fields map[string]any, key string) *int64 {
	if v, ok := fields[key]; !ok || v == nil {
		return nil
	}
	n := fieldInt64(fields, key)
	return &n
}

package store

import (
	"context"
	"errors"

	"github.com/tracery-ai/tracery/pkg/common"
)

// Well-known collection names, agreed out-of-band with the ingestion
// pipeline.
const (
	CollectionEntities    = "kg_entities"
	CollectionCommunities = "kg_communities"
)

var (
	// ErrIndexUnavailable is returned when the vector index is unreachable
	// or timed out. Whether this is fatal depends on the caller: the entity
	// search is mandatory, the community search degrades to empty.
	ErrIndexUnavailable = errors.New("store: vector index unavailable")

	// ErrGraphUnavailable is returned when the graph store is unreachable or
	// timed out. Graph failures always propagate; skipping graph reasoning
	// silently would make the result shape ambiguous to the caller.
	ErrGraphUnavailable = errors.New("store: graph store unavailable")

	// ErrInvalidBound is returned when a caller-supplied parameter violates
	// a configured bound (hop ceiling, path-length ceiling, non-positive k).
	// It is always raised before any external call is made.
	ErrInvalidBound = errors.New("store: parameter out of bounds")
)

// Hit is a single vector-search result: the stored id, the similarity score
// reported by the index, and the metadata fields attached at ingestion time.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]any
}

// VectorIndex defines approximate nearest-neighbor search over named
// collections of embedded vectors. Implementations are safe for concurrent
// use.
type VectorIndex interface {
	// Search returns at most k hits from the named collection, ordered by
	// descending similarity. Ties follow the store's native order and are
	// not guaranteed stable. A missing or empty collection yields an empty
	// slice, not an error.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]Hit, error)
}

// GraphStore defines the bounded, read-only traversal and lookup operations
// the retrieval core needs from the knowledge graph. Implementations are
// safe for concurrent use.
type GraphStore interface {
	// Neighbors expands the graph around the named entity up to maxHops
	// hops, capped at a fixed result limit regardless of fan-out. Results
	// are ordered by ascending distance, then neighbor name. maxHops above
	// the configured ceiling is rejected with ErrInvalidBound.
	Neighbors(ctx context.Context, entity string, maxHops int) ([]common.NeighborHit, error)

	// ShortestPaths finds paths between two entities up to maxLength hops,
	// ordered by ascending length and capped at a fixed count. No connecting
	// path yields an empty slice, not an error.
	ShortestPaths(ctx context.Context, entityA, entityB string, maxLength int) ([]common.GraphPath, error)

	// CommunitySummary returns the community's generated summary, or nil
	// when the upstream summary-generation step has not produced one yet.
	CommunitySummary(ctx context.Context, communityID int64) (*string, error)

	// SourceDocuments returns the entity's provenance refs, deduplicated by
	// document and page.
	SourceDocuments(ctx context.Context, entity string) ([]common.SourceRef, error)
}

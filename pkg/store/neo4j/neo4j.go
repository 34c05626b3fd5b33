package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tracery-ai/tracery/internal/util"
	"github.com/tracery-ai/tracery/pkg/common"
	"github.com/tracery-ai/tracery/pkg/store"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxHopCeiling  = 2
	defaultMaxPathCeiling = 3
	neighborLimit         = 20
	pathLimit             = 5
	dialRetries           = 3
	dialRetryDelay        = 2 * time.Second
)

// GraphDB implements store.GraphStore backed by Neo4j. All operations are
// read-only and bounded: traversal depth is validated against configured
// ceilings before any query is issued, and every query carries a fixed
// result limit. The driver pools connections and is safe for concurrent use.
type GraphDB struct {
	driver  neo4j.DriverWithContext
	timeout time.Duration

	maxHopCeiling  int
	maxPathCeiling int
}

// NewGraphDBParams contains the connection configuration for a Neo4j graph
// store. The ceilings bound what callers may request per operation; they are
// configuration, not per-call inputs.
type NewGraphDBParams struct {
	URI      string
	Username string
	Password string

	Timeout        time.Duration
	MaxHopCeiling  int
	MaxPathCeiling int
}

// NewGraphDB connects to Neo4j and verifies connectivity. Transient dial
// failures are retried a fixed number of times before giving up.
func NewGraphDB(ctx context.Context, params NewGraphDBParams) (*GraphDB, error) {
	driver, err := neo4j.NewDriverWithContext(params.URI, neo4j.BasicAuth(params.Username, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: create driver: %v", store.ErrGraphUnavailable, err)
	}

	err = util.RetryErrWithContext(ctx, dialRetries, dialRetryDelay, func(ctx context.Context) error {
		return driver.VerifyConnectivity(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: verify connectivity to %s: %v", store.ErrGraphUnavailable, params.URI, err)
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hopCeiling := params.MaxHopCeiling
	if hopCeiling <= 0 {
		hopCeiling = defaultMaxHopCeiling
	}
	pathCeiling := params.MaxPathCeiling
	if pathCeiling <= 0 {
		pathCeiling = defaultMaxPathCeiling
	}

	return &GraphDB{
		driver:         driver,
		timeout:        timeout,
		maxHopCeiling:  hopCeiling,
		maxPathCeiling: pathCeiling,
	}, nil
}

// Close releases the underlying driver and its connection pool.
func (g *GraphDB) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// Neighbors expands the graph around the named entity up to maxHops hops.
// The hop bound is validated against the configured ceiling and then
// formatted into the variable-length pattern; variable-length bounds cannot
// be cypher parameters, so validation happens before any query text exists.
func (g *GraphDB) Neighbors(ctx context.Context, entity string, maxHops int) ([]common.NeighborHit, error) {
	if maxHops < 1 || maxHops > g.maxHopCeiling {
		return nil, fmt.Errorf("%w: max_hops %d outside 1..%d", store.ErrInvalidBound, maxHops, g.maxHopCeiling)
	}

	query := fmt.Sprintf(`
		MATCH path = (e:Entity {name: $name})-[*1..%d]-(neighbor:Entity)
		WHERE e <> neighbor
		WITH e, neighbor,
		     [r IN relationships(path) | {type: type(r), predicate: r.predicate}] AS rels,
		     length(path) AS distance
		RETURN DISTINCT
		       neighbor.name AS neighbor_name,
		       neighbor.layer AS neighbor_layer,
		       neighbor.community_id AS neighbor_community,
		       rels,
		       distance
		ORDER BY distance, neighbor_name
		LIMIT $limit`, maxHops)

	records, err := g.readRecords(ctx, query, map[string]any{
		"name":  entity,
		"limit": neighborLimit,
	})
	if err != nil {
		return nil, err
	}

	neighbors := make([]common.NeighborHit, 0, len(records))
	for _, record := range records {
		neighbors = append(neighbors, common.NeighborHit{
			Name:          stringValue(recordValue(record, "neighbor_name")),
			Layer:         common.Layer(stringValue(recordValue(record, "neighbor_layer"))),
			CommunityID:   int64Ptr(recordValue(record, "neighbor_community")),
			Relationships: relationChain(recordValue(record, "rels")),
			Distance:      int64Value(recordValue(record, "distance")),
		})
	}
	return neighbors, nil
}

// ShortestPaths finds up to pathLimit shortest paths between two entities
// within maxLength hops, ordered by ascending length. No connecting path
// yields an empty slice.
func (g *GraphDB) ShortestPaths(ctx context.Context, entityA, entityB string, maxLength int) ([]common.GraphPath, error) {
	if maxLength < 1 || maxLength > g.maxPathCeiling {
		return nil, fmt.Errorf("%w: max_length %d outside 1..%d", store.ErrInvalidBound, maxLength, g.maxPathCeiling)
	}

	query := fmt.Sprintf(`
		MATCH path = shortestPath((e1:Entity {name: $name1})-[*..%d]-(e2:Entity {name: $name2}))
		WHERE e1 <> e2
		WITH path, length(path) AS path_length
		RETURN [n IN nodes(path) | n.name] AS nodes,
		       [r IN relationships(path) | {type: type(r), predicate: r.predicate}] AS relationships,
		       path_length
		ORDER BY path_length
		LIMIT $limit`, maxLength)

	records, err := g.readRecords(ctx, query, map[string]any{
		"name1": entityA,
		"name2": entityB,
		"limit": pathLimit,
	})
	if err != nil {
		return nil, err
	}

	paths := make([]common.GraphPath, 0, len(records))
	for _, record := range records {
		paths = append(paths, common.GraphPath{
			Nodes:         stringSlice(recordValue(record, "nodes")),
			Relationships: relationChain(recordValue(record, "relationships")),
			Length:        int64Value(recordValue(record, "path_length")),
		})
	}
	return paths, nil
}

// CommunitySummary returns the community's generated summary, or nil when
// the community exists without one (summary generation not run yet) or does
// not exist at all.
func (g *GraphDB) CommunitySummary(ctx context.Context, communityID int64) (*string, error) {
	query := `
		MATCH (c:Community {community_id: $community_id})
		RETURN c.summary AS summary`

	records, err := g.readRecords(ctx, query, map[string]any{
		"community_id": communityID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	summary := stringValue(recordValue(records[0], "summary"))
	if summary == "" {
		return nil, nil
	}
	return &summary, nil
}

// SourceDocuments returns the entity's provenance refs. The graph query
// already applies DISTINCT; refs that still collide on document and page
// (same page, different block) are collapsed to the first seen, since the
// deduplication key is the document plus page pair.
func (g *GraphDB) SourceDocuments(ctx context.Context, entity string) ([]common.SourceRef, error) {
	query := `
		MATCH (e:Entity {name: $name})-[:FROM]->(d:Document)
		RETURN DISTINCT d.title AS document,
		                e.page_number AS page,
		                e.block_id AS block`

	records, err := g.readRecords(ctx, query, map[string]any{
		"name": entity,
	})
	if err != nil {
		return nil, err
	}

	refs := make([]common.SourceRef, 0, len(records))
	for _, record := range records {
		refs = append(refs, common.SourceRef{
			Document: stringValue(recordValue(record, "document")),
			Page:     int64Value(recordValue(record, "page")),
			Block:    int64Value(recordValue(record, "block")),
		})
	}
	return DedupeRefs(refs), nil
}

func (g *GraphDB) readRecords(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	rCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	session := g.driver.NewSession(rCtx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(rCtx)

	result, err := session.Run(rCtx, query, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrGraphUnavailable, err)
	}

	var records []*neo4j.Record
	for result.Next(rCtx) {
		records = append(records, result.Record())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrGraphUnavailable, err)
	}
	return records, nil
}

func recordValue(record *neo4j.Record, key string) any {
	value, _ := record.Get(key)
	return value
}

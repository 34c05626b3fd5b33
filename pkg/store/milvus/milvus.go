package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tracery-ai/tracery/internal/util"
	"github.com/tracery-ai/tracery/pkg/store"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultSearchEf = 128
	dialRetries     = 3
	dialRetryDelay  = 2 * time.Second
)

// outputFields lists the metadata fields requested per collection. The
// schemas are owned by the ingestion pipeline; only read here.
var outputFields = map[string][]string{
	store.CollectionEntities:    {"name", "layer", "community_id", "node_id"},
	store.CollectionCommunities: {"community_id", "size"},
}

// VectorStore implements store.VectorIndex backed by Milvus. The underlying
// client is connection-pooled and safe for concurrent searches.
type VectorStore struct {
	milvus      client.Client
	timeout     time.Duration
	searchEf    int
	fieldsByCol map[string][]string
}

// NewVectorStoreParams contains the connection configuration for a Milvus
// vector store. OutputFields may override the per-collection metadata
// fields requested on search; unset collections fall back to the defaults.
type NewVectorStoreParams struct {
	Address  string
	Username string
	Password string

	Timeout      time.Duration
	SearchEf     int
	OutputFields map[string][]string
}

// NewVectorStore dials Milvus and returns a VectorStore. Transient dial
// failures are retried a fixed number of times before giving up.
func NewVectorStore(ctx context.Context, params NewVectorStoreParams) (*VectorStore, error) {
	cfg := client.Config{
		Address:  params.Address,
		Username: params.Username,
		Password: params.Password,
	}

	milvusClient, err := util.RetryWithContext(ctx, dialRetries, dialRetryDelay,
		func(ctx context.Context) (client.Client, error) {
			return client.NewClient(ctx, cfg)
		})
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %v", store.ErrIndexUnavailable, params.Address, err)
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	searchEf := params.SearchEf
	if searchEf <= 0 {
		searchEf = defaultSearchEf
	}

	fields := make(map[string][]string, len(outputFields))
	for k, v := range outputFields {
		fields[k] = v
	}
	for k, v := range params.OutputFields {
		fields[k] = v
	}

	return &VectorStore{
		milvus:      milvusClient,
		timeout:     timeout,
		searchEf:    searchEf,
		fieldsByCol: fields,
	}, nil
}

// Close releases the underlying Milvus connection.
func (v *VectorStore) Close() error {
	return v.milvus.Close()
}

// Search runs an approximate nearest-neighbor search against the named
// collection and returns at most k hits in descending similarity order.
// A collection that does not exist yet (ingestion not run) yields an empty
// result rather than an error.
func (v *VectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]store.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", store.ErrInvalidBound, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", store.ErrInvalidBound)
	}

	rCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	has, err := v.milvus.HasCollection(rCtx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: check collection %s: %v", store.ErrIndexUnavailable, collection, err)
	}
	if !has {
		return []store.Hit{}, nil
	}

	sp, err := entity.NewIndexHNSWSearchParam(v.searchEf)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := v.milvus.Search(rCtx,
		collection,
		nil,
		"",
		v.fieldsByCol[collection],
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		entity.COSINE,
		k,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", store.ErrIndexUnavailable, collection, err)
	}

	var hits []store.Hit
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			hit := store.Hit{
				Score:  float64(result.Scores[i]),
				Fields: map[string]any{},
			}
			if result.IDs != nil {
				if id, err := result.IDs.GetAsString(i); err == nil {
					hit.ID = id
				}
			}
			for _, field := range v.fieldsByCol[collection] {
				col := result.Fields.GetColumn(field)
				if col == nil {
					continue
				}
				if val, ok := ColumnValue(col, i); ok {
					hit.Fields[field] = val
				}
			}
			hits = append(hits, hit)
		}
	}
	if hits == nil {
		hits = []store.Hit{}
	}
	return hits, nil
}

// ColumnValue extracts the i-th value from a Milvus result column for the
// scalar column types the ingestion schemas use.
func ColumnValue(col entity.Column, i int) (any, bool) {
	switch c := col.(type) {
	case *entity.ColumnVarChar:
		if i < len(c.Data()) {
			return c.Data()[i], true
		}
	case *entity.ColumnInt64:
		if i < len(c.Data()) {
			return c.Data()[i], true
		}
	case *entity.ColumnInt32:
		if i < len(c.Data()) {
			return int64(c.Data()[i]), true
		}
	case *entity.ColumnFloat:
		if i < len(c.Data()) {
			return float64(c.Data()[i]), true
		}
	case *entity.ColumnDouble:
		if i < len(c.Data()) {
			return c.Data()[i], true
		}
	case *entity.ColumnBool:
		if i < len(c.Data()) {
			return c.Data()[i], true
		}
	}
	return nil, false
}

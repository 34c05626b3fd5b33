package common

import "strconv"

// Layer classifies an entity within the knowledge graph. Layers form a small
// closed set assigned during ingestion; the retrieval core only reads them.
type Layer string

const (
	LayerMaterial    Layer = "MaterialLayer"
	LayerDevice      Layer = "DeviceLayer"
	LayerSystem      Layer = "SystemLayer"
	LayerApplication Layer = "ApplicationLayer"
	LayerConcept     Layer = "ConceptLayer"
	LayerProcess     Layer = "ProcessLayer"
)

// Entity represents a named node in the knowledge graph together with its
// similarity score from vector search. The name is the entity's identity;
// NodeID is the opaque graph-store handle used to join against the vector
// index. CommunityID is nil until community detection has run upstream.
//
// Entities are created by the ingestion pipeline and are read-only here.
type Entity struct {
	Name        string  `json:"name"`
	Layer       Layer   `json:"layer"`
	CommunityID *int64  `json:"community_id"`
	NodeID      string  `json:"node_id"`
	Score       float64 `json:"score"`
}

// RelationStep describes one relationship edge traversed along a path.
// Type is the normalized relation tag (HELPS, PROMOTES, INFLUENCES,
// REQUIRES, RELATED_TO, ...); Predicate is the original natural-language
// predicate the relation was extracted from.
type RelationStep struct {
	Type      string `json:"type"`
	Predicate string `json:"predicate"`
}

// Community is a cluster of entities produced by an upstream graph-clustering
// step. Size is the member count recorded at detection time and is never
// recomputed here. Summary is generated externally and may be absent.
type Community struct {
	ID      int64   `json:"community_id"`
	Size    int64   `json:"size"`
	Score   float64 `json:"score"`
	Summary *string `json:"summary"`
}

// SourceRef links an entity back to the passage it was extracted from.
// Two refs are considered duplicates when they share the same document and
// page; an entity may legitimately appear on several pages of one document.
type SourceRef struct {
	Document string `json:"document"`
	Page     int64  `json:"page"`
	Block    int64  `json:"block"`
}

// Key returns the deduplication key for the ref: document plus page.
func (s SourceRef) Key() string {
	return s.Document + "\x00" + strconv.FormatInt(s.Page, 10)
}

// NeighborHit is one entity reached by bounded neighbor expansion.
// Relationships holds the relation chain along the shortest connecting path
// at the reported distance.
type NeighborHit struct {
	Name          string         `json:"name"`
	Layer         Layer          `json:"layer"`
	CommunityID   *int64         `json:"community_id"`
	Relationships []RelationStep `json:"relationships"`
	Distance      int64          `json:"distance"`
}

// NeighborExpansion is the bounded subgraph around a single anchor entity.
type NeighborExpansion struct {
	Entity    string        `json:"entity"`
	Neighbors []NeighborHit `json:"neighbors"`
}

// GraphPath is one path found between two entities. Nodes and Relationships
// are ordered from the start entity to the end entity.
type GraphPath struct {
	Nodes         []string       `json:"nodes"`
	Relationships []RelationStep `json:"relationships"`
	Length        int64          `json:"length"`
}

// PathSearch holds the shortest paths found between the two top-scoring
// entities of a retrieval.
type PathSearch struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Paths []GraphPath `json:"paths"`
}

// RetrievalResult is the assembled output of one hybrid retrieval. It is
// transient: built per query, owned by the caller, never cached or persisted.
//
// Entities and Communities keep the descending-similarity order returned by
// the vector index. Neighbors and Paths are nil when graph reasoning was not
// requested or not applicable. Sources is deduplicated by document and page
// in first-seen order.
type RetrievalResult struct {
	Query       string             `json:"query"`
	Entities    []Entity           `json:"entities"`
	Communities []Community        `json:"communities"`
	Neighbors   *NeighborExpansion `json:"neighbors,omitempty"`
	Paths       *PathSearch        `json:"paths,omitempty"`
	Sources     []SourceRef        `json:"source_documents"`
}

package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/tracery-ai/tracery/pkg/common"
	"github.com/tracery-ai/tracery/pkg/store"
)

func TestNeighbors_RejectsHopBounds(t *testing.T) {
	g := &GraphDB{maxHopCeiling: 2, maxPathCeiling: 3}

	for _, hops := range []int{0, -1, 3, 10} {
		_, err := g.Neighbors(context.Background(), "Demo Day", hops)
		if !errors.Is(err, store.ErrInvalidBound) {
			t.Fatalf("max_hops=%d: expected ErrInvalidBound, got %v", hops, err)
		}
	}
}

func TestShortestPaths_RejectsLengthBounds(t *testing.T) {
	g := &GraphDB{maxHopCeiling: 2, maxPathCeiling: 3}

	for _, length := range []int{0, 4, 100} {
		_, err := g.ShortestPaths(context.Background(), "A", "B", length)
		if !errors.Is(err, store.ErrInvalidBound) {
			t.Fatalf("max_length=%d: expected ErrInvalidBound, got %v", length, err)
		}
	}
}

func TestRelationChain(t *testing.T) {
	steps := relationChain([]any{
		map[string]any{"type": "HELPS", "predicate": "帮助"},
		map[string]any{"type": "RELATED_TO", "predicate": nil},
	})
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Type != "HELPS" || steps[0].Predicate != "帮助" {
		t.Fatalf("unexpected first step: %+v", steps[0])
	}
	if steps[1].Type != "RELATED_TO" || steps[1].Predicate != "" {
		t.Fatalf("unexpected second step: %+v", steps[1])
	}
}

func TestRelationChain_NonList(t *testing.T) {
	if steps := relationChain(nil); steps != nil {
		t.Fatalf("expected nil for nil input, got %v", steps)
	}
	if steps := relationChain("garbage"); steps != nil {
		t.Fatalf("expected nil for non-list input, got %v", steps)
	}
}

func TestInt64Ptr(t *testing.T) {
	if p := int64Ptr(nil); p != nil {
		t.Fatalf("expected nil for null community, got %v", *p)
	}
	p := int64Ptr(int64(7))
	if p == nil || *p != 7 {
		t.Fatalf("expected 7, got %v", p)
	}
}

func TestStringSlice(t *testing.T) {
	nodes := stringSlice([]any{"融资策略", "风险投资", "Demo Day"})
	if len(nodes) != 3 || nodes[2] != "Demo Day" {
		t.Fatalf("unexpected nodes: %v", nodes)
	}
}

func TestDedupeRefs_ByDocumentAndPage(t *testing.T) {
	refs := []common.SourceRef{
		{Document: "startup_guide.pdf", Page: 3, Block: 1},
		{Document: "startup_guide.pdf", Page: 3, Block: 9},
		{Document: "startup_guide.pdf", Page: 4, Block: 1},
		{Document: "funding.pdf", Page: 3, Block: 2},
	}
	out := DedupeRefs(refs)
	if len(out) != 3 {
		t.Fatalf("expected 3 refs, got %d: %v", len(out), out)
	}
	// first occurrence wins
	if out[0].Block != 1 {
		t.Fatalf("expected first-seen block 1, got %d", out[0].Block)
	}
	if out[1].Page != 4 || out[2].Document != "funding.pdf" {
		t.Fatalf("unexpected order: %v", out)
	}
}

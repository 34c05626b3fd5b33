package query

import (
	"strings"
	"testing"

	"github.com/tracery-ai/tracery/pkg/common"
)

func TestFormat_EmptyResult(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Fatalf("expected empty string for nil result, got %q", got)
	}
	if got := Format(&common.RetrievalResult{Query: "financing strategy"}); got != "" {
		t.Fatalf("expected empty string for empty result, got %q", got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	summary := "Venture financing concepts."
	result := &common.RetrievalResult{
		Communities: []common.Community{{ID: 4, Size: 12, Score: 0.88, Summary: &summary}},
		Entities:    []common.Entity{{Name: "融资策略", Layer: common.LayerConcept, Score: 0.91}},
		Sources:     []common.SourceRef{{Document: "funding.pdf", Page: 3, Block: 1}},
	}
	first := Format(result)
	second := Format(result)
	if first != second {
		t.Fatalf("expected identical output on repeated calls:\n%q\n%q", first, second)
	}
}

func TestFormat_OmitsEmptySections(t *testing.T) {
	result := &common.RetrievalResult{
		Entities: []common.Entity{{Name: "融资策略", Layer: common.LayerConcept, Score: 0.91}},
	}
	got := Format(result)
	if !strings.Contains(got, "Key entities:") {
		t.Fatalf("expected entity section, got:\n%s", got)
	}
	for _, header := range []string{
		"Relevant knowledge communities:",
		"Entities related to",
		"Paths from",
		"Knowledge sources:",
	} {
		if strings.Contains(got, header) {
			t.Fatalf("unexpected section %q in:\n%s", header, got)
		}
	}
}

func TestFormat_SectionOrder(t *testing.T) {
	summary := "Venture financing concepts."
	result := &common.RetrievalResult{
		Communities: []common.Community{{ID: 4, Size: 12, Score: 0.88, Summary: &summary}},
		Entities:    []common.Entity{{Name: "融资策略", Layer: common.LayerConcept, Score: 0.91}},
		Neighbors: &common.NeighborExpansion{
			Entity:    "融资策略",
			Neighbors: []common.NeighborHit{{Name: "天使投资", Distance: 1}},
		},
		Paths: &common.PathSearch{
			From:  "融资策略",
			To:    "Demo Day",
			Paths: []common.GraphPath{{Nodes: []string{"融资策略", "Demo Day"}, Length: 1}},
		},
		Sources: []common.SourceRef{{Document: "funding.pdf", Page: 3, Block: 1}},
	}
	got := Format(result)

	headers := []string{
		"Relevant knowledge communities:",
		"Key entities:",
		"Entities related to 融资策略:",
		"Paths from 融资策略 to Demo Day:",
		"Knowledge sources:",
	}
	last := -1
	for _, header := range headers {
		idx := strings.Index(got, header)
		if idx < 0 {
			t.Fatalf("missing section %q in:\n%s", header, got)
		}
		if idx < last {
			t.Fatalf("section %q out of order in:\n%s", header, got)
		}
		last = idx
	}
}

func TestFormat_AppliesPresentationCaps(t *testing.T) {
	result := &common.RetrievalResult{}
	for i := 0; i < 8; i++ {
		result.Entities = append(result.Entities, common.Entity{
			Name:  string(rune('A' + i)),
			Layer: common.LayerConcept,
			Score: 0.9 - float64(i)*0.05,
		})
	}
	result.Neighbors = &common.NeighborExpansion{Entity: "A"}
	for i := 0; i < 7; i++ {
		result.Neighbors.Neighbors = append(result.Neighbors.Neighbors, common.NeighborHit{
			Name:     string(rune('N' + i)),
			Distance: 1,
		})
	}
	result.Paths = &common.PathSearch{From: "A", To: "B"}
	for i := 0; i < 4; i++ {
		result.Paths.Paths = append(result.Paths.Paths, common.GraphPath{
			Nodes:  []string{"A", "B"},
			Length: 1,
		})
	}
	for i := 0; i < 5; i++ {
		result.Sources = append(result.Sources, common.SourceRef{
			Document: "funding.pdf",
			Page:     int64(i + 1),
			Block:    1,
		})
	}

	got := Format(result)

	checks := []struct {
		header string
		want   int
	}{
		{"Key entities:", formatMaxEntities},
		{"Entities related to A:", formatMaxNeighbors},
		{"Paths from A to B:", formatMaxPaths},
		{"Knowledge sources:", formatMaxSources},
	}
	for _, check := range checks {
		lines := sectionLines(t, got, check.header)
		if len(lines) != check.want {
			t.Fatalf("section %q: expected %d lines, got %d: %v", check.header, check.want, len(lines), lines)
		}
	}
}

func TestFormat_PreservesInputOrder(t *testing.T) {
	result := &common.RetrievalResult{
		Entities: []common.Entity{
			{Name: "融资策略", Layer: common.LayerConcept, Score: 0.91},
			{Name: "Demo Day", Layer: common.LayerProcess, Score: 0.85},
			{Name: "风险投资", Layer: common.LayerConcept, Score: 0.80},
		},
		Neighbors: &common.NeighborExpansion{
			Entity: "融资策略",
			Neighbors: []common.NeighborHit{
				{Name: "天使投资", Distance: 1},
				{Name: "融资轮次", Distance: 1},
				{Name: "尽职调查", Distance: 2},
			},
		},
	}
	got := Format(result)

	entities := sectionLines(t, got, "Key entities:")
	for i, name := range []string{"融资策略", "Demo Day", "风险投资"} {
		if !strings.Contains(entities[i], name) {
			t.Fatalf("entity line %d: expected %q, got %q", i, name, entities[i])
		}
	}
	neighbors := sectionLines(t, got, "Entities related to 融资策略:")
	for i, name := range []string{"天使投资", "融资轮次", "尽职调查"} {
		if !strings.Contains(neighbors[i], name) {
			t.Fatalf("neighbor line %d: expected %q, got %q", i, name, neighbors[i])
		}
	}
}

func TestFormat_RelationLabels(t *testing.T) {
	tests := []struct {
		name  string
		steps []common.RelationStep
		want  string
	}{
		{"empty chain", nil, "unknown"},
		{"predicate preferred", []common.RelationStep{{Type: "HELPS", Predicate: "帮助"}}, "帮助"},
		{"falls back to type", []common.RelationStep{{Type: "RELATED_TO"}}, "RELATED_TO"},
		{"multi-hop chain", []common.RelationStep{{Predicate: "需要"}, {Type: "RELATED_TO"}}, "需要 -> RELATED_TO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relationLabel(tt.steps); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormat_HopLabels(t *testing.T) {
	if got := hopLabel(1); got != "1 hop" {
		t.Fatalf("expected singular label, got %q", got)
	}
	if got := hopLabel(2); got != "2 hops" {
		t.Fatalf("expected plural label, got %q", got)
	}
}

package neo4j

import (
	"github.com/tracery-ai/tracery/pkg/common"
)

// The driver returns cypher values as any: strings, int64s, and
// []any / map[string]any for lists and maps. These helpers normalize them
// into the domain shapes, tolerating nulls from optional properties.

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func int64Value(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func int64Ptr(v any) *int64 {
	if v == nil {
		return nil
	}
	n := int64Value(v)
	return &n
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringValue(item))
	}
	return out
}

func relationChain(v any) []common.RelationStep {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]common.RelationStep, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, common.RelationStep{
			Type:      stringValue(m["type"]),
			Predicate: stringValue(m["predicate"]),
		})
	}
	return out
}

// DedupeRefs collapses refs sharing a document and page to the first
// occurrence, preserving order.
func DedupeRefs(refs []common.SourceRef) []common.SourceRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]common.SourceRef, 0, len(refs))
	for _, ref := range refs {
		key := ref.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

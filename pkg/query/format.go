package query

import (
	"fmt"
	"strings"

	"github.com/tracery-ai/tracery/pkg/common"
)

// Presentation caps. These bound how much of each section is rendered and
// are independent of the retrieval caps, which bound computation.
const (
	formatMaxEntities  = 5
	formatMaxNeighbors = 5
	formatMaxPaths     = 2
	formatMaxSources   = 3
)

// Format renders a retrieval result into the ordered context block handed
// to a language model. It is a pure function of its input: no I/O, same
// output for the same result.
//
// Sections appear in a fixed order (communities, entities, neighbor
// reasoning, path reasoning, sources) and a section with nothing to say is
// omitted entirely. A result with every list empty renders as the empty
// string.
func Format(result *common.RetrievalResult) string {
	if result == nil {
		return ""
	}

	var out []string

	if len(result.Communities) > 0 {
		out = append(out, "Relevant knowledge communities:")
		for _, community := range result.Communities {
			line := fmt.Sprintf("Community %d (similarity %.3f, %d members):", community.ID, community.Score, community.Size)
			out = append(out, line)
			if community.Summary != nil {
				out = append(out, "  "+*community.Summary)
			}
		}
		out = append(out, "")
	}

	if len(result.Entities) > 0 {
		out = append(out, "Key entities:")
		for i, entity := range result.Entities {
			if i >= formatMaxEntities {
				break
			}
			out = append(out, fmt.Sprintf("- %s [%s] (similarity %.3f)", entity.Name, entity.Layer, entity.Score))
		}
		out = append(out, "")
	}

	if result.Neighbors != nil && len(result.Neighbors.Neighbors) > 0 {
		out = append(out, fmt.Sprintf("Entities related to %s:", result.Neighbors.Entity))
		for i, neighbor := range result.Neighbors.Neighbors {
			if i >= formatMaxNeighbors {
				break
			}
			out = append(out, fmt.Sprintf("- %s (%s, via: %s)",
				neighbor.Name, hopLabel(neighbor.Distance), relationLabel(neighbor.Relationships)))
		}
		out = append(out, "")
	}

	if result.Paths != nil && len(result.Paths.Paths) > 0 {
		out = append(out, fmt.Sprintf("Paths from %s to %s:", result.Paths.From, result.Paths.To))
		for i, path := range result.Paths.Paths {
			if i >= formatMaxPaths {
				break
			}
			out = append(out, fmt.Sprintf("%d. %s", i+1, strings.Join(path.Nodes, " -> ")))
		}
		out = append(out, "")
	}

	if len(result.Sources) > 0 {
		out = append(out, "Knowledge sources:")
		for i, source := range result.Sources {
			if i >= formatMaxSources {
				break
			}
			out = append(out, fmt.Sprintf("- %s, page %d", source.Document, source.Page))
		}
		out = append(out, "")
	}

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n")
}

func hopLabel(distance int64) string {
	if distance == 1 {
		return "1 hop"
	}
	return fmt.Sprintf("%d hops", distance)
}

// relationLabel joins the relation chain, preferring the original predicate
// over the normalized tag.
func relationLabel(steps []common.RelationStep) string {
	if len(steps) == 0 {
		return "unknown"
	}
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		label := step.Predicate
		if label == "" {
			label = step.Type
		}
		if label == "" {
			label = "unknown"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " -> ")
}

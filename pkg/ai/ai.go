package ai

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when an embedding is requested for empty or
// whitespace-only input. The retrieval pipeline must never search with a
// zero vector, so this is surfaced instead of a padded result.
var ErrEmptyInput = errors.New("ai: embedding input is empty")

// EmbeddingClient defines the interface for turning text into a
// fixed-dimension vector. Implementations are safe for concurrent use and
// deterministic for a fixed model version.
type EmbeddingClient interface {
	// GenerateEmbedding creates a vector embedding for the given input text.
	// The returned slice always has the client's configured dimension.
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	// Dimensions reports the fixed embedding dimension of the deployed model.
	Dimensions() int
}

// ModelMetrics contains accumulated metrics from embedding operations.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	TotalTokens int   `json:"total_tokens"`
	Requests    int   `json:"requests"`
	DurationMs  int64 `json:"duration_ms"`
}

// ClampVector truncates or zero-pads vec to exactly dim entries. Embedding
// backends occasionally return more dimensions than the index was built
// with (matryoshka models), so results are normalized to the configured
// dimension before use.
func ClampVector(vec []float32, dim int) []float32 {
	if dim <= 0 {
		return vec
	}
	if len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}

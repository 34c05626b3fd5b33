package ollama

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/tracery-ai/tracery/pkg/ai"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama.
//
// Empty or whitespace-only input is rejected with ai.ErrEmptyInput; callers
// must not proceed with a zero vector.
func (c *EmbeddingOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input []byte,
) ([]float32, error) {
	if len(strings.TrimSpace(string(input))) == 0 {
		return nil, ai.ErrEmptyInput
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	if len(res.Embeddings) == 0 {
		return nil, ai.ErrEmptyInput
	}

	vec := make([]float32, 0, len(res.Embeddings[0]))
	for _, v := range res.Embeddings[0] {
		vec = append(vec, float32(v))
	}
	return ai.ClampVector(vec, c.dimensions), nil
}

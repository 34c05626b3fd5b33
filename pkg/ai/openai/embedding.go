package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/tracery-ai/tracery/pkg/ai"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
//
// Empty or whitespace-only input is rejected with ai.ErrEmptyInput; callers
// must not proceed with a zero vector.
func (c *EmbeddingOpenAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	text := string(input)
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ai.ErrEmptyInput
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.embeddingLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.embeddingLock.Release(1)

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: c.embeddingModel,
	}

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	if len(response.Data) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(response.Data))
	}

	vec := make([]float32, 0, len(response.Data[0].Embedding))
	for _, v := range response.Data[0].Embedding {
		vec = append(vec, float32(v))
	}
	return ai.ClampVector(vec, c.dimensions), nil
}

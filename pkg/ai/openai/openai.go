package openai

import (
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/tracery-ai/tracery/pkg/ai"
)

const (
	defaultDimensions = 1536
	defaultTimeout    = time.Minute
	defaultParallel   = 15
)

// EmbeddingOpenAIClient implements ai.EmbeddingClient against an
// OpenAI-compatible embeddings endpoint.
//
// An EmbeddingOpenAIClient should be created using NewEmbeddingOpenAIClient.
type EmbeddingOpenAIClient struct {
	embeddingModel string
	dimensions     int
	timeout        time.Duration

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	EmbeddingClient *openai.Client
}

// NewEmbeddingOpenAIClientParams defines the configuration for creating a
// new EmbeddingOpenAIClient. EmbeddingURL and EmbeddingKey configure the
// endpoint; Dimensions is the fixed dimension of the deployed model.
type NewEmbeddingOpenAIClientParams struct {
	EmbeddingModel string
	Dimensions     int

	EmbeddingURL string
	EmbeddingKey string

	Timeout               time.Duration
	MaxConcurrentRequests int64
}

// NewEmbeddingOpenAIClient creates and returns a new EmbeddingOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	client := openai.NewEmbeddingOpenAIClient(openai.NewEmbeddingOpenAIClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		Dimensions:     1536,
//		EmbeddingURL:   "https://api.openai.com/v1",
//		EmbeddingKey:   key,
//	})
func NewEmbeddingOpenAIClient(
	params NewEmbeddingOpenAIClientParams,
) *EmbeddingOpenAIClient {
	opts := []option.RequestOption{}
	if params.EmbeddingURL != "" {
		opts = append(opts, option.WithBaseURL(params.EmbeddingURL))
	}
	if params.EmbeddingKey != "" {
		opts = append(opts, option.WithAPIKey(params.EmbeddingKey))
	}
	client := openai.NewClient(opts...)

	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	parallel := params.MaxConcurrentRequests
	if parallel <= 0 {
		parallel = defaultParallel
	}

	return &EmbeddingOpenAIClient{
		embeddingModel:  params.EmbeddingModel,
		dimensions:      dim,
		timeout:         timeout,
		embeddingLock:   semaphore.NewWeighted(parallel),
		EmbeddingClient: &client,
	}
}

// Dimensions reports the configured embedding dimension.
func (c *EmbeddingOpenAIClient) Dimensions() int {
	return c.dimensions
}

// Metrics returns a snapshot of the accumulated embedding metrics.
func (c *EmbeddingOpenAIClient) Metrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *EmbeddingOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.Requests++
	c.metrics.DurationMs += m.DurationMs
}

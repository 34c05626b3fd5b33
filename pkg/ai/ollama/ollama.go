package ollama

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/tracery-ai/tracery/pkg/ai"
)

const (
	defaultDimensions = 768
	defaultTimeout    = time.Minute
	defaultParallel   = 15
)

// EmbeddingOllamaClient implements ai.EmbeddingClient using a locally-hosted
// Ollama server. A weighted semaphore bounds the number of in-flight
// requests against the server.
type EmbeddingOllamaClient struct {
	embeddingModel string
	dimensions     int
	timeout        time.Duration

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// NewEmbeddingOllamaClientParams contains configuration options for creating
// a new EmbeddingOllamaClient. Dimensions is the fixed dimension of the
// deployed model; it is configuration, not negotiated at call time.
type NewEmbeddingOllamaClientParams struct {
	EmbeddingModel string
	Dimensions     int

	BaseURL string
	ApiKey  string

	Timeout               time.Duration
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewEmbeddingOllamaClient creates a new Ollama-based embedding client that
// connects to the server at the given BaseURL (or the Ollama default when
// empty).
func NewEmbeddingOllamaClient(
	params NewEmbeddingOllamaClientParams,
) (*EmbeddingOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

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

	client := api.NewClient(u, httpClient)

	return &EmbeddingOllamaClient{
		embeddingModel: params.EmbeddingModel,
		dimensions:     dim,
		timeout:        timeout,
		reqLock:        semaphore.NewWeighted(parallel),
		Client:         client,
	}, nil
}

// Dimensions reports the configured embedding dimension.
func (c *EmbeddingOllamaClient) Dimensions() int {
	return c.dimensions
}

// Metrics returns a snapshot of the accumulated embedding metrics.
func (c *EmbeddingOllamaClient) Metrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *EmbeddingOllamaClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.Requests++
	c.metrics.DurationMs += m.DurationMs
}

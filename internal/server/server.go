package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/tracery-ai/tracery/internal/server/middleware"
	"github.com/tracery-ai/tracery/internal/storage"
	"github.com/tracery-ai/tracery/internal/util"
	"github.com/tracery-ai/tracery/pkg/ai"
	oai "github.com/tracery-ai/tracery/pkg/ai/ollama"
	gai "github.com/tracery-ai/tracery/pkg/ai/openai"
	"github.com/tracery-ai/tracery/pkg/logger"
	"github.com/tracery-ai/tracery/pkg/query"
	"github.com/tracery-ai/tracery/pkg/store/milvus"
	"github.com/tracery-ai/tracery/pkg/store/neo4j"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func newEmbeddingClient() ai.EmbeddingClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewEmbeddingOllamaClient(oai.NewEmbeddingOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 768)),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewEmbeddingOpenAIClient(gai.NewEmbeddingOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1536)),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	index, err := milvus.NewVectorStore(ctx, milvus.NewVectorStoreParams{
		Address:  util.GetEnv("MILVUS_ADDRESS"),
		Username: util.GetEnv("MILVUS_USERNAME"),
		Password: util.GetEnv("MILVUS_PASSWORD"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to vector index", "err", err)
	}
	defer index.Close()

	graph, err := neo4j.NewGraphDB(ctx, neo4j.NewGraphDBParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USERNAME"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to graph database", "err", err)
	}
	defer graph.Close(context.Background())

	retriever, err := query.NewRetriever(query.NewRetrieverParams{
		Embedder: newEmbeddingClient(),
		Index:    index,
		Graph:    graph,
	})
	if err != nil {
		logger.Fatal("Failed to create retriever", "err", err)
	}

	s3 := storage.NewS3Client(ctx)
	documents := storage.NewDocumentStore(s3, util.GetEnvString("DOCS_PARSED_PREFIX", "parsed"))

	app := &mid.App{
		Retriever: retriever,
		Documents: documents,
		S3:        s3,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

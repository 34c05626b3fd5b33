package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracery-ai/tracery/internal/server/middleware"
	"github.com/tracery-ai/tracery/pkg/ai"
	"github.com/tracery-ai/tracery/pkg/common"
	"github.com/tracery-ai/tracery/pkg/logger"
	"github.com/tracery-ai/tracery/pkg/query"
	"github.com/tracery-ai/tracery/pkg/store"
)

type queryRequest struct {
	Query                 string `json:"query" validate:"required"`
	TopK                  *int   `json:"top_k" validate:"omitempty,min=1,max=50"`
	IncludeGraphReasoning *bool  `json:"include_graph_reasoning"`
}

func (q *queryRequest) topK() int {
	if q.TopK == nil {
		return query.DefaultTopK
	}
	return *q.TopK
}

func (q *queryRequest) includeGraphReasoning() bool {
	if q.IncludeGraphReasoning == nil {
		return true
	}
	return *q.IncludeGraphReasoning
}

// statusForRetrievalError maps retrieval failures onto HTTP status codes.
// Caller mistakes are 400s, backend outages are 503s, the rest is a 500.
func statusForRetrievalError(err error) int {
	switch {
	case errors.Is(err, ai.ErrEmptyInput), errors.Is(err, store.ErrInvalidBound):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrIndexUnavailable), errors.Is(err, store.ErrGraphUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// QueryHandler runs a retrieval and returns the structured result.
func QueryHandler(c echo.Context) error {
	type queryResponse struct {
		Message string                  `json:"message"`
		TraceID string                  `json:"trace_id,omitempty"`
		Result  *common.RetrievalResult `json:"result,omitempty"`
	}

	data := new(queryRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	result, err := cc.App.Retriever.Retrieve(ctx, data.Query, data.topK(), data.includeGraphReasoning())
	if err != nil {
		logger.Error("[Query] retrieval failed", "trace_id", cc.TraceID, "err", err)
		return c.JSON(statusForRetrievalError(err), queryResponse{
			Message: "Retrieval failed",
			TraceID: cc.TraceID,
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		Message: "OK",
		TraceID: cc.TraceID,
		Result:  result,
	})
}

// QueryContextHandler runs a retrieval and returns the rendered context
// block instead of the structured result. This is the shape tool-calling
// frameworks bind to.
func QueryContextHandler(c echo.Context) error {
	type queryContextResponse struct {
		Message string `json:"message"`
		TraceID string `json:"trace_id,omitempty"`
		Context string `json:"context"`
	}

	data := new(queryRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryContextResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryContextResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	text, err := cc.App.Retriever.SearchAndFormat(ctx, data.Query, data.topK(), data.includeGraphReasoning())
	if err != nil {
		logger.Error("[Query] retrieval failed", "trace_id", cc.TraceID, "err", err)
		return c.JSON(statusForRetrievalError(err), queryContextResponse{
			Message: "Retrieval failed",
			TraceID: cc.TraceID,
		})
	}

	return c.JSON(http.StatusOK, queryContextResponse{
		Message: "OK",
		TraceID: cc.TraceID,
		Context: text,
	})
}

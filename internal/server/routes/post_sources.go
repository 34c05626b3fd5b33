package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracery-ai/tracery/internal/server/middleware"
	"github.com/tracery-ai/tracery/internal/storage"
	"github.com/tracery-ai/tracery/internal/util"
	"github.com/tracery-ai/tracery/pkg/common"
	"github.com/tracery-ai/tracery/pkg/logger"
)

// ResolveSourcesHandler turns source references from a retrieval result back
// into the passage text they cite, with a presigned link to the original
// file when one can be generated.
func ResolveSourcesHandler(c echo.Context) error {
	type sourceRef struct {
		Document string `json:"document" validate:"required"`
		Page     int64  `json:"page" validate:"min=1"`
		Block    int64  `json:"block" validate:"min=0"`
	}

	type resolveSourcesRequest struct {
		Sources []sourceRef `json:"sources" validate:"required,min=1,max=20,dive"`
	}

	type resolvedSource struct {
		Document string `json:"document"`
		Page     int64  `json:"page"`
		Block    int64  `json:"block"`
		Text     string `json:"text,omitempty"`
		Link     string `json:"link,omitempty"`
	}

	type resolveSourcesResponse struct {
		Message string           `json:"message"`
		TraceID string           `json:"trace_id,omitempty"`
		Sources []resolvedSource `json:"sources,omitempty"`
	}

	data := new(resolveSourcesRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveSourcesResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveSourcesResponse{
			Message: "Invalid request body",
		})
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()
	rawPrefix := util.GetEnvString("DOCS_RAW_PREFIX", "raw")

	resolved := make([]resolvedSource, 0, len(data.Sources))
	for _, ref := range data.Sources {
		item := resolvedSource{
			Document: ref.Document,
			Page:     ref.Page,
			Block:    ref.Block,
		}

		text, err := cc.App.Documents.LookupPassage(ctx, common.SourceRef{
			Document: ref.Document,
			Page:     ref.Page,
			Block:    ref.Block,
		})
		if err != nil {
			logger.Error("[Sources] failed to resolve passage", "trace_id", cc.TraceID, "document", ref.Document, "err", err)
			return c.JSON(http.StatusNotFound, resolveSourcesResponse{
				Message: "Document not found",
				TraceID: cc.TraceID,
			})
		}
		item.Text = text

		link, err := storage.GenerateDownloadLink(ctx, cc.App.S3, rawPrefix+"/"+ref.Document)
		if err != nil {
			// Missing link metadata is not worth failing the lookup over.
			logger.Warn("[Sources] failed to generate download link", "trace_id", cc.TraceID, "document", ref.Document, "err", err)
		} else {
			item.Link = link
		}

		resolved = append(resolved, item)
	}

	return c.JSON(http.StatusOK, resolveSourcesResponse{
		Message: "OK",
		TraceID: cc.TraceID,
		Sources: resolved,
	})
}

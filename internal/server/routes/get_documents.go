package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracery-ai/tracery/internal/server/middleware"
	"github.com/tracery-ai/tracery/pkg/logger"
)

// GetDocumentsHandler lists the documents with parsed content in the bucket.
func GetDocumentsHandler(c echo.Context) error {
	type getDocumentsResponse struct {
		Message   string   `json:"message"`
		TraceID   string   `json:"trace_id,omitempty"`
		Documents []string `json:"documents"`
	}

	cc := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	documents, err := cc.App.Documents.ListDocuments(ctx)
	if err != nil {
		logger.Error("[Documents] failed to list documents", "trace_id", cc.TraceID, "err", err)
		return c.JSON(http.StatusInternalServerError, getDocumentsResponse{
			Message: "Failed to list documents",
			TraceID: cc.TraceID,
		})
	}

	return c.JSON(http.StatusOK, getDocumentsResponse{
		Message:   "OK",
		TraceID:   cc.TraceID,
		Documents: documents,
	})
}

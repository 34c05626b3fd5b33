package server

import (
	"github.com/tracery-ai/tracery/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Retrieval routes
	apiRoutes.POST("/query", routes.QueryHandler)
	apiRoutes.POST("/query/context", routes.QueryContextHandler)

	// Source document routes
	apiRoutes.POST("/sources", routes.ResolveSourcesHandler)
	apiRoutes.GET("/documents", routes.GetDocumentsHandler)
}

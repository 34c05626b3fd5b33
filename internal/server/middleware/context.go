package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tracery-ai/tracery/internal/storage"
	"github.com/tracery-ai/tracery/pkg/query"
)

type App struct {
	Retriever *query.Retriever
	Documents *storage.DocumentStore
	S3        *s3.Client
}

type AppContext struct {
	echo.Context
	App     *App
	TraceID string
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID, err := gonanoid.New()
			if err != nil {
				traceID = "unknown"
			}
			c.Response().Header().Set("X-Trace-Id", traceID)

			cc := &AppContext{c, app, traceID}
			return next(cc)
		}
	}
}

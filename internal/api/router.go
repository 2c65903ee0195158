package api

import (
	"context"

	"github.com/kmorav/gom3u8/internal/api/controllers"
	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/engine"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

func RegisterRoutes(e *echo.Echo, baseCtx context.Context, appCtx *app.Context, eng *engine.Orchestrator, history controllers.HistoryLister) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			appCtx.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	batchCtrl := controllers.NewBatchController(baseCtx, appCtx, eng)
	historyCtrl := &controllers.HistoryController{Store: history}

	// Batch lifecycle
	e.POST("/api/batches", batchCtrl.Create)
	e.GET("/api/batches/:id", batchCtrl.Status)

	// Archived results
	e.GET("/api/history", historyCtrl.List)
}

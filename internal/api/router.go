// Package api wires the HTTP routes of the dashboard service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dashboard-service/internal/api/handlers"
)

// Handlers groups the route handlers.
type Handlers struct {
	Workbook  *handlers.WorkbookHandler
	Dashboard *handlers.DashboardHandler
	Units     *handlers.UnitsHandler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h Handlers, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "dashboard-service"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/workbook", h.Workbook.HandleStatus)
		apiV1.POST("/workbook", h.Workbook.HandleUpload)
		apiV1.POST("/workbook/reload", h.Workbook.HandleReload)

		apiV1.GET("/overview", h.Dashboard.HandleOverview)
		apiV1.GET("/kinds/:kind/records", h.Dashboard.HandleRecords)
		apiV1.GET("/kinds/:kind/summary", h.Dashboard.HandleSummary)
		apiV1.GET("/kinds/:kind/stats", h.Dashboard.HandleStats)
		apiV1.GET("/kinds/:kind/export.csv", h.Dashboard.HandleExportCSV)

		apiV1.GET("/units", h.Units.HandleList)
		apiV1.GET("/units/view", h.Units.HandleView)
		apiV1.GET("/units/export", h.Units.HandleExport)
	}
	return router
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

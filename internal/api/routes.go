package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes on the router. metricsHandler
// may be nil when telemetry is disabled.
func SetupRoutes(router *gin.Engine, handler *Handler, serviceName, version string, metricsHandler http.Handler) {
	v1 := router.Group("/api/v1")

	news := v1.Group("/news")
	news.GET("", handler.GetNews)                          // GET /api/v1/news
	news.GET("/personalized", handler.GetPersonalizedNews) // GET /api/v1/news/personalized

	v1.POST("/score", handler.Score)       // POST /api/v1/score
	v1.POST("/classify", handler.Classify) // POST /api/v1/classify
	v1.GET("/article", handler.GetArticle) // GET /api/v1/article

	router.GET("/health", handler.HealthCheck(serviceName, version))
	router.GET("/ready", handler.ReadyCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}

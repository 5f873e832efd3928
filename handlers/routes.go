package handlers

import (
	"github.com/gin-gonic/gin"

	"ecomfunnel/middleware"
)

// NewRouter wires the report API. /api/health is public, /api/stats requires auth.
func NewRouter(h *ReportHandlers, auth middleware.AuthConfig, allowedOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(allowedOrigin))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		stats := api.Group("/stats")
		stats.Use(middleware.AuthRequired(auth))
		{
			stats.GET("/first-page", h.GetFirstPageSegments)
			stats.GET("/product-only", h.GetProductOnlyViewers)
			stats.GET("/anomalies", h.GetAnomalousUsers)
			stats.GET("/journeys", h.GetJourneys)
			stats.GET("/journeys/:session", h.GetJourney)
		}
	}
	return r
}

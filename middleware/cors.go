// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured dashboard origin to read reports.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Origin comes from server.allowedorigin; an empty value sends no header at all.
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		}

		// Bearer tokens may also travel with cookies from the dashboard.
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// X-API-KEY must be listed or browsers drop it from the preflighted request.
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-API-KEY, Cache-Control")

		// The report API is read-only.
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		// Preflight requests stop here with 204 No Content.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

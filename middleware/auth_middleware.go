package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecomfunnel/logger"
	"ecomfunnel/utils"
)

type AuthConfig struct {
	APIKey    string
	JWTSecret []byte
	Log       *logger.Logger
}

// AuthRequired accepts either the configured X-API-KEY or a bearer token
// signed with the JWT secret.
func AuthRequired(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); key != "" && cfg.APIKey != "" &&
			subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) == 1 {
			c.Next()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			cfg.Log.Debug("AuthRequired: no credentials", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims, err := utils.ValidateJWT(cfg.JWTSecret, tokenString)
		if err != nil {
			cfg.Log.Info("AuthRequired: invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

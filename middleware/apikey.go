package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireMetricsKey gates the Prometheus scrape endpoint behind a shared
// key. With METRICS_API_KEY unset the gate is open, which is the right
// default for local runs and tests; set it wherever /metrics is exposed
// beyond the scrape network.
func RequireMetricsKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := os.Getenv("METRICS_API_KEY")
		if key != "" && c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing api key"})
			return
		}
		c.Next()
	}
}

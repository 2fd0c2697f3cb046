package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GetHealth handles health check requests
func GetHealth(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  databaseStatus(c, deps),
		}
		if deps.Media != nil {
			response["media"] = gin.H{"handles": deps.Media.Len(), "bytes": deps.Media.Bytes()}
		}
		c.JSON(http.StatusOK, response)
	}
}

func databaseStatus(c *gin.Context, deps *Dependencies) gin.H {
	if deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}
	if err := deps.DB.HealthCheck(c.Request.Context()); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}
	return gin.H{"status": "healthy"}
}

// GetVersion handles version requests
func GetVersion(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "studio",
			"version":     deps.Version,
			"description": "Creative suite backend for speech, image, video and story generation",
			"status":      "running",
		})
	}
}

// GetMetrics exposes the Prometheus registry.
func GetMetrics(deps *Dependencies) gin.HandlerFunc {
	h := promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

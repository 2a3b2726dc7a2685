package routes

import (
	"net/http"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/cache"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp" example:"2026-08-01T02:00:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SetupHealthRoutes registers health check endpoints
func SetupHealthRoutes(router *gin.Engine, db *connection.Database, redisClient *cache.RedisClient) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})

	// Readiness verifies the backing stores are reachable.
	router.GET("/health/ready", func(c *gin.Context) {
		checks := map[string]string{"database": "ok", "redis": "ok"}
		status := http.StatusOK

		if err := db.HealthCheck(); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		state := "ready"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, HealthResponse{
			Status:    state,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	})
}

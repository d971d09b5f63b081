package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/database"
)

type HealthHandler struct {
	redis   *database.RedisClient
	version string
	started time.Time
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Services  map[string]string `json:"services"`
}

func NewHealthHandler(redis *database.RedisClient, version string) *HealthHandler {
	return &HealthHandler{
		redis:   redis,
		version: version,
		started: time.Now(),
	}
}

// Health reports overall service health including dependency status. Redis
// is optional, so a failing cache marks the service degraded, not down.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	services := map[string]string{"redis": "disabled"}

	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			services["redis"] = "unhealthy"
			status = "degraded"
		} else {
			services["redis"] = "healthy"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Services:  services,
	})
}

// Live is the liveness probe.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready is the readiness probe. The forecast engine needs no warm-up, so
// readiness tracks liveness.
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

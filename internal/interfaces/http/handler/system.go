package handler

import (
	"net/http"
	"time"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler serves the unauthenticated status and health endpoints
type SystemHandler struct {
	registry *record.Registry
	now      func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(registry *record.Registry) *SystemHandler {
	return &SystemHandler{
		registry: registry,
		now:      time.Now,
	}
}

// RegisterRoutes registers the status route
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.Status)
}

// Status reports the service as online with its modules in registry order
func (h *SystemHandler) Status(c *gin.Context) {
	modules := h.registry.Modules()
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.String()
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:    "online",
		Timestamp: h.now().Format(time.RFC3339),
		Modules:   names,
	})
}

// Health is the liveness probe
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

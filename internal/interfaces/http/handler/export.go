package handler

import (
	"net/http"

	"github.com/erp/backoffice/internal/application/export"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ExportHandler triggers module exports
type ExportHandler struct {
	BaseHandler
	service *export.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// RegisterRoutes registers the export route
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/exportacao", h.ExportAll)
}

// ExportAll writes every non-empty module to its export artifact.
// Modules that failed to write are listed in falhas.
func (h *ExportHandler) ExportAll(c *gin.Context) {
	result, err := h.service.ExportAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExportResponse{
		Message: "Dados exportados com sucesso",
		Modules: result.Exported,
		Failed:  result.Failed,
	})
}

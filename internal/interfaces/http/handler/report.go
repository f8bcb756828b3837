package handler

import (
	"net/http"

	"github.com/erp/backoffice/internal/application/report"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler generates statistics reports
type ReportHandler struct {
	BaseHandler
	service *report.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers the report route
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/relatorios", h.Generate)
}

// Generate computes the report over all modules, writes its artifact and
// returns both the artifact name and the report
func (h *ReportHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, dto.ReportResponse{
		Message: "Relatório gerado com sucesso",
		File:    result.Name,
		Report:  result.Report,
	})
}

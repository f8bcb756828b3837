package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erp/backoffice/internal/application/ingestion"
	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ModuleRoute binds a module to its collection path under the API group
type ModuleRoute struct {
	Module record.Module
	Path   string
}

// DefaultModuleRoutes returns the collection path of every back-office module
func DefaultModuleRoutes() []ModuleRoute {
	return []ModuleRoute{
		{Module: record.Financeiro, Path: "/financeiro/lancamentos"},
		{Module: record.Contabil, Path: "/contabil/lancamentos"},
		{Module: record.Fiscal, Path: "/fiscal/notas-fiscais"},
		{Module: record.RH, Path: "/rh/funcionarios"},
		{Module: record.Compras, Path: "/compras/pedidos"},
		{Module: record.Vendas, Path: "/vendas/pedidos"},
		{Module: record.Estoque, Path: "/estoque/produtos"},
		{Module: record.Patrimonio, Path: "/patrimonio/bens"},
	}
}

// RecordHandler serves submission and listing for the module collections
type RecordHandler struct {
	BaseHandler
	service *ingestion.Service
	routes  []ModuleRoute
}

// NewRecordHandler creates a new RecordHandler.
// Without routes the default module paths are served.
func NewRecordHandler(service *ingestion.Service, routes ...ModuleRoute) *RecordHandler {
	if len(routes) == 0 {
		routes = DefaultModuleRoutes()
	}
	return &RecordHandler{
		service: service,
		routes:  routes,
	}
}

// RegisterRoutes registers POST (submit) and GET (list) for every module path
func (h *RecordHandler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, route := range h.routes {
		rg.POST(route.Path, h.Submit(route.Module))
		rg.GET(route.Path, h.List(route.Module))
	}
}

// Submit returns the handler accepting one record for module.
// The body must be a JSON object; its fields are stored as sent.
func (h *RecordHandler) Submit(module record.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ModuleKey, module.String())

		rec, err := decodeRecord(c.Request)
		if err != nil {
			h.bindError(c, err)
			return
		}
		if rec == nil {
			h.BadRequest(c, dto.ErrCodeInvalidJSON, "O corpo da requisição deve ser um objeto JSON")
			return
		}

		result, err := h.service.Submit(c.Request.Context(), module.String(), rec)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		c.JSON(http.StatusCreated, dto.SubmitResponse{
			Message: result.Message,
			ID:      result.ID,
		})
	}
}

// List returns the handler listing the records accepted for module in
// insertion order, windowed by the optional offset and limit query parameters
func (h *RecordHandler) List(module record.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ModuleKey, module.String())

		var query dto.ListQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}

		records, err := h.service.List(c.Request.Context(), module.String())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if records == nil {
			records = []record.AcceptedRecord{}
		}

		start, end := query.Window(len(records))
		c.PureJSON(http.StatusOK, records[start:end])
	}
}

// decodeRecord reads a JSON object from the request body. Numbers are kept
// as json.Number so integers beyond float64 precision are stored exactly.
func decodeRecord(req *http.Request) (record.Record, error) {
	if req.Body == nil {
		return nil, errors.New("invalid request")
	}

	dec := json.NewDecoder(req.Body)
	dec.UseNumber()

	var rec record.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// bindError answers a body that could not be decoded
func (h *RecordHandler) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.BadRequest(c, dto.ErrCodeInvalidJSON, "JSON inválido: "+err.Error())
}

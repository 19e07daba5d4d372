package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockreport/internal/domain/reports"
	"stockreport/internal/infrastructure/http/v1/dto"
)

// ProductReporter builds the products report.
type ProductReporter interface {
	GetProducts(ctx context.Context, req reports.ReportRequest) (*reports.ReportResult, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service    ProductReporter
	maxPerPage int
}

// NewReportsHandler creates a new reports handler. maxPerPage 0 leaves page size uncapped.
func NewReportsHandler(base *BaseHandler, service ProductReporter, maxPerPage int) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		maxPerPage:  maxPerPage,
	}
}

// GetProducts handles GET /reports/products
func (h *ReportsHandler) GetProducts(c *gin.Context) {
	var q dto.ProductsReportRequest
	if !h.BindQuery(c, &q) {
		return
	}

	req, err := q.ToReportRequest(h.maxPerPage)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.GetProducts(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReportResult(result))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.GetProducts)
}

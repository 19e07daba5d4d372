package dto

import (
	"stockreport/internal/core/apperror"
	"stockreport/internal/domain/reports"
)

// --- Products Report ---

// ProductsReportRequest represents query parameters of the products report.
type ProductsReportRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`

	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"perPage" binding:"omitempty,min=1"`

	CategoryIDs   []int64  `form:"category"`
	TagIDs        []int64  `form:"tag"`
	StockStatuses []string `form:"stockStatus"`

	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	MinSales int64  `form:"minSales" binding:"omitempty,min=0"`
	MaxSales int64  `form:"maxSales" binding:"omitempty,min=0"`

	IncludeVariations bool `form:"includeVariations"`
}

// ToReportRequest converts the query into a domain request.
// maxPerPage caps PerPage; 0 disables the cap.
func (r ProductsReportRequest) ToReportRequest(maxPerPage int) (reports.ReportRequest, error) {
	if maxPerPage > 0 && r.PerPage > maxPerPage {
		return reports.ReportRequest{}, apperror.NewValidation("perPage is too large").
			WithDetail("max", maxPerPage)
	}

	minPrice, err := ParseMoney("minPrice", r.MinPrice)
	if err != nil {
		return reports.ReportRequest{}, err
	}
	maxPrice, err := ParseMoney("maxPrice", r.MaxPrice)
	if err != nil {
		return reports.ReportRequest{}, err
	}

	return reports.ReportRequest{
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		SortBy:            r.SortBy,
		SortOrder:         r.SortOrder,
		Page:              r.Page,
		PerPage:           r.PerPage,
		CategoryIDs:       r.CategoryIDs,
		TagIDs:            r.TagIDs,
		StockStatuses:     r.StockStatuses,
		MinPrice:          minPrice,
		MaxPrice:          maxPrice,
		MinSales:          r.MinSales,
		MaxSales:          r.MaxSales,
		IncludeVariations: r.IncludeVariations,
	}, nil
}

// ProductsReportResponse represents one page of the products report.
type ProductsReportResponse struct {
	Products []ProductReportItem `json:"products"`
	PageMeta
}

// ProductReportItem represents a product (or variation) row.
type ProductReportItem struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	SKU           string                `json:"sku"`
	StockQuantity int                   `json:"stockQuantity"`
	StockStatus   string                `json:"stockStatus"`
	RegularPrice  *string               `json:"regularPrice"`
	SalePrice     *string               `json:"salePrice"`
	Type          string                `json:"type"`
	Status        string                `json:"status"`
	TotalSales    int64                 `json:"totalSales"`
	Variations    []VariationReportItem `json:"variations"`
}

// VariationReportItem represents a variation nested under its parent.
type VariationReportItem struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku"`
	StockQuantity int               `json:"stockQuantity"`
	StockStatus   string            `json:"stockStatus"`
	RegularPrice  *string           `json:"regularPrice"`
	SalePrice     *string           `json:"salePrice"`
	Type          string            `json:"type"`
	Status        string            `json:"status"`
	TotalSales    int64             `json:"totalSales"`
	Attributes    map[string]string `json:"attributes"`
}

// FromReportResult converts a domain report page to response DTO.
func FromReportResult(r *reports.ReportResult) *ProductsReportResponse {
	resp := &ProductsReportResponse{
		Products: make([]ProductReportItem, len(r.Rows)),
		PageMeta: PageMeta{
			TotalCount:  r.TotalCount,
			TotalPages:  r.TotalPages,
			CurrentPage: r.CurrentPage,
			PerPage:     r.PerPage,
		},
	}

	for i, row := range r.Rows {
		item := ProductReportItem{
			ID:            row.ID,
			Name:          row.Name,
			SKU:           row.SKU,
			StockQuantity: row.StockQuantity,
			StockStatus:   row.StockStatus,
			RegularPrice:  MoneyString(row.RegularPrice),
			SalePrice:     MoneyString(row.SalePrice),
			Type:          row.Type,
			Status:        row.Status,
			TotalSales:    row.TotalSales,
			Variations:    make([]VariationReportItem, len(row.Variations)),
		}
		for j, v := range row.Variations {
			attrs := v.Attributes
			if attrs == nil {
				attrs = map[string]string{}
			}
			item.Variations[j] = VariationReportItem{
				ID:            v.ID,
				Name:          v.Name,
				SKU:           v.SKU,
				StockQuantity: v.StockQuantity,
				StockStatus:   v.StockStatus,
				RegularPrice:  MoneyString(v.RegularPrice),
				SalePrice:     MoneyString(v.SalePrice),
				Type:          v.Type,
				Status:        v.Status,
				TotalSales:    v.TotalSales,
				Attributes:    attrs,
			}
		}
		resp.Products[i] = item
	}

	return resp
}

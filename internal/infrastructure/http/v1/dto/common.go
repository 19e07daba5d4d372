// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/types"
)

// --- Money ---

// MoneyString renders an optional price as its decimal text, or nil when absent.
func MoneyString(m types.NullMoney) *string {
	if !m.Valid {
		return nil
	}
	s := m.Decimal.String()
	return &s
}

// ParseMoney parses an optional money query value. Empty input is zero.
func ParseMoney(field, raw string) (types.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Zero(), nil
	}
	m, err := types.NewMoneyFromString(raw)
	if err != nil {
		return types.Zero(), apperror.NewValidation("invalid amount").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return m, nil
}

// --- Pagination ---

// PageMeta is the pagination block of a paged response.
type PageMeta struct {
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
}

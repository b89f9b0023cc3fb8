package common

import (
	"net/url"
	"strconv"
)

// Query keys used for paging list endpoints
const (
	QueryKeyPage     = "page"
	QueryKeyPageSize = "pageSize"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ExtractPaginationParams reads page and pageSize from query values.
// Missing or malformed values fall back to the first page of defaultSize;
// sizes above maxSize are clamped.
func ExtractPaginationParams(values url.Values, defaultSize, maxSize int) PaginationParams {
	params := PaginationParams{Page: 1, PageSize: defaultSize}

	if page := values.Get(QueryKeyPage); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if pageSize := values.Get(QueryKeyPageSize); pageSize != "" {
		if ps, err := strconv.Atoi(pageSize); err == nil && ps > 0 {
			params.PageSize = ps
		}
	}
	if maxSize > 0 && params.PageSize > maxSize {
		params.PageSize = maxSize
	}

	return params
}

// CalculateOffset calculates the offset for database queries
func (p PaginationParams) CalculateOffset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// PaginationInfo contains pagination details
type PaginationInfo struct {
	Page       int  `json:"page" yaml:"page"`
	PageSize   int  `json:"pageSize" yaml:"pageSize"`
	Total      int  `json:"total" yaml:"total"`
	TotalPages int  `json:"totalPages" yaml:"totalPages"`
	HasNext    bool `json:"hasNext" yaml:"hasNext"`
	HasPrev    bool `json:"hasPrev" yaml:"hasPrev"`
}

// BuildPaginationMeta builds pagination metadata
func BuildPaginationMeta(page, pageSize, total int) PaginationInfo {
	totalPages := CalculateTotalPages(total, pageSize)

	return PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

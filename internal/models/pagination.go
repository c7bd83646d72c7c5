// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package models

// Pagination describes the search panel page window.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Offset     int   `json:"offset"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination computes page metadata. TotalPages is never below 1 and page
// is clamped into [1, TotalPages].
func NewPagination(page, pageSize int, total int64) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Offset:     (page - 1) * pageSize,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

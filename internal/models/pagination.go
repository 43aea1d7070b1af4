package models

import (
	"math"
	"strings"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage keeps (Page-1)*Limit within int for any valid limit.
	MaxPage = math.MaxInt / MaxPageLimit
)

// SortOrder orders listings by creation time.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc in any case. Anything else yields desc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// PageRequest carries paging parameters for a listing.
type PageRequest struct {
	Page  int
	Limit int
	Sort  SortOrder
}

// Normalize clamps the request to valid bounds.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultPageLimit
	}
	if r.Limit > MaxPageLimit {
		r.Limit = MaxPageLimit
	}
	if r.Sort != SortAsc {
		r.Sort = SortDesc
	}
	return r
}

// Offset returns the number of rows to skip.
func (r PageRequest) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.Limit
}

// OrderBy returns the created_at ordering clause for the request.
func (r PageRequest) OrderBy() string {
	if r.Normalize().Sort == SortAsc {
		return "created_at ASC"
	}
	return "created_at DESC"
}

// Page is one page of a listing.
type Page[T any] struct {
	Items     []T   `json:"items"`
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// NewPage builds a page. TotalPage is never below 1, even for an empty result.
func NewPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	totalPage := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	if totalPage < 1 {
		totalPage = 1
	}
	return &Page[T]{
		Items:     items,
		Page:      req.Page,
		Limit:     req.Limit,
		Total:     total,
		TotalPage: totalPage,
	}
}

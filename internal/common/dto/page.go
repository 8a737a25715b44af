package dto

import "github.com/dealerhub/dealerhub/internal/apiserver/database"

// PageQuery is the query string shared by list endpoints
type PageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1"`
	Q        string `form:"q" binding:"omitempty,max=100"`
	Status   string `form:"status" binding:"omitempty,max=20"`
}

// Options converts the query into repository paging, clamped to the allowed range
func (q PageQuery) Options() database.ListOptions {
	return database.ListOptions{Page: q.Page, PageSize: q.PageSize}.Normalize()
}

// Page is the envelope of every list response
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewPage wraps items; a nil slice is rendered as []
func NewPage[T any](items []T, total int64, opts database.ListOptions) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Total: total, Page: opts.Page, PageSize: opts.PageSize}
}

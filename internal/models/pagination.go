package models

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PagingOptions is a 1-based page request with clamped size.
type PagingOptions struct {
	Page int
	Size int
}

func NewPagingOptions(page, size int) PagingOptions {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return PagingOptions{Page: page, Size: size}
}

func (p PagingOptions) Offset() int {
	return (p.Page - 1) * p.Size
}

func (p PagingOptions) Limit() int {
	return p.Size
}

// PagedList is one page of results plus the total row count.
type PagedList[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalCount int64
}

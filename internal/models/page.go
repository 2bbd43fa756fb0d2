package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a limit/offset window for list queries.
type Page struct {
	Limit  int
	Offset int
}

// NewPage converts 1-based page numbers into a window.
func NewPage(page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return Page{Limit: size, Offset: (page - 1) * size}
}

type ListResult[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// NewListResult never renders results as null.
func NewListResult[T any](items []T, total int) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{Count: total, Results: items}
}

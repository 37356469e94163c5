package domain

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Page is one page of a paginated listing
type Page[T any] struct {
	Data       []T   `json:"data" yaml:"data"`
	Page       int   `json:"page" yaml:"page"`
	PageSize   int   `json:"page_size" yaml:"page_size"`
	Total      int64 `json:"total_items" yaml:"total_items"`
	TotalPages int   `json:"total_pages" yaml:"total_pages"`
}

// NewPage builds a page and derives the page count
func NewPage[T any](data []T, page, pageSize int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

package shared

// Page describes a page request
type Page struct {
	Page     int
	PageSize int
}

// Normalize fills in defaults and clamps the page size
func (p Page) Normalize(defaultSize, maxSize int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	if items == nil {
		items = make([]T, 0)
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// MapPaginated converts the items of a page, keeping its metadata
func MapPaginated[T, R any](p Paginated[T], fn func(T) R) Paginated[R] {
	items := make([]R, len(p.Items))
	for i, it := range p.Items {
		items[i] = fn(it)
	}
	return Paginated[R]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

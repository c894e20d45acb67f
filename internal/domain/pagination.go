package domain

// PaginationParams selects one page of a listing. A zero PageSize means the
// listing is not paged.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limited reports whether the listing is paged.
func (p PaginationParams) Limited() bool {
	return p.PageSize > 0
}

// Offset returns the number of rows before the current page. Pages start at 1.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || !p.Limited() {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

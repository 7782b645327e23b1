package repository

// Pagination holds pagination parameters for listing entities.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

// DefaultPageSize applies when a query leaves PageSize unset.
const DefaultPageSize = 50

// Offset is the index of the first row on the page. It is computed in int64
// so large page numbers cannot wrap around.
func (p *Pagination) Offset() int64 { return (int64(p.PageNo) - 1) * int64(p.PageSize) }

// Normalize fills in the first page and the default size.
func (p *Pagination) Normalize() {
	if p.PageNo <= 0 {
		p.PageNo = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
}

type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }

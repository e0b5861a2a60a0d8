package pagination

import "gorm.io/gorm"

// ItemsPerPage matches the dashboard tables.
const ItemsPerPage = 6

type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"-"`
}

type PageInfo struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = ItemsPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Apply limits stmt to the requested page.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return stmt.Limit(n.PageSize).Offset(n.Offset())
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = ItemsPerPage
	}
	if total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	return PageInfo{
		Page:       n.Page,
		TotalPages: TotalPages(total, n.PageSize),
		TotalItems: total,
	}
}

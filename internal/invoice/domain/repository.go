package domain

import (
	"context"

	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id string) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*InvoiceView, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*InvoiceView, error)
	Count(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) (int64, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*InvoiceView, error)
}

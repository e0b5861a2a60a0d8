package domain

import (
	"context"

	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id string) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*CustomerSummary, error)
	Count(ctx context.Context, db *gorm.DB, filter ListCustomerFilter) (int64, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*Customer, error)
	ImageURLs(ctx context.Context, db *gorm.DB) ([]string, error)
}

package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, name, email, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.ImageURL,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	if customer.ImageURL == "" {
		return db.WithContext(ctx).Exec(
			`UPDATE customers SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			customer.Name,
			customer.Email,
			customer.UpdatedAt,
			customer.ID,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET name = ?, email = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		customer.Name,
		customer.Email,
		customer.ImageURL,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM customers WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, image_url, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == "" {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.CustomerSummary, error) {
	page = page.Normalize()
	pattern := likePattern(filter.Query)

	var customers []*domain.CustomerSummary
	err := db.WithContext(ctx).Raw(
		`SELECT c.id, c.name, c.email, c.image_url, c.created_at, c.updated_at,
		        COUNT(i.id) AS total_invoices,
		        COALESCE(SUM(CASE WHEN i.status = 'pending' THEN i.amount ELSE 0 END), 0) AS total_pending,
		        COALESCE(SUM(CASE WHEN i.status = 'paid' THEN i.amount ELSE 0 END), 0) AS total_paid
		 FROM customers c
		 LEFT JOIN invoices i ON c.id = i.customer_id
		 WHERE LOWER(c.name) LIKE ? OR LOWER(c.email) LIKE ?
		 GROUP BY c.id, c.name, c.email, c.image_url, c.created_at, c.updated_at
		 ORDER BY c.name ASC, c.id ASC
		 LIMIT ? OFFSET ?`,
		pattern,
		pattern,
		page.PageSize,
		page.Offset(),
	).Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter) (int64, error) {
	pattern := likePattern(filter.Query)

	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM customers
		 WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?`,
		pattern,
		pattern,
	).Scan(&count).Error
	return count, err
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Order("name asc, id asc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) ImageURLs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var urls []string
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Distinct("image_url").
		Pluck("image_url", &urls).Error
	return urls, err
}

func likePattern(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

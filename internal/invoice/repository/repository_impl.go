package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"gorm.io/gorm"
)

const viewColumns = `i.id, i.customer_id, i.amount, i.status, i.date, i.created_at, i.updated_at,
		        COALESCE(c.name, '') AS customer_name,
		        COALESCE(c.email, '') AS customer_email,
		        COALESCE(c.image_url, '') AS customer_image_url`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, customer_id, amount, status, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.Date,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET customer_id = ?, amount = ?, status = ?, updated_at = ? WHERE id = ?`,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.InvoiceView, error) {
	var invoice domain.InvoiceView
	err := db.WithContext(ctx).Raw(
		`SELECT `+viewColumns+`
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id
		 WHERE i.id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == "" {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.InvoiceView, error) {
	page = page.Normalize()
	where, args := searchClause(db, filter.Query)
	args = append(args, page.PageSize, page.Offset())

	var invoices []*domain.InvoiceView
	err := db.WithContext(ctx).Raw(
		`SELECT `+viewColumns+`
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id
		 WHERE `+where+`
		 ORDER BY i.date DESC, i.created_at DESC, i.id ASC
		 LIMIT ? OFFSET ?`,
		args...,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) (int64, error) {
	where, args := searchClause(db, filter.Query)

	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id
		 WHERE `+where,
		args...,
	).Scan(&count).Error
	return count, err
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.InvoiceView, error) {
	var invoices []*domain.InvoiceView
	err := db.WithContext(ctx).Raw(
		`SELECT ` + viewColumns + `
		 FROM invoices i
		 LEFT JOIN customers c ON c.id = i.customer_id
		 ORDER BY i.date DESC, i.created_at DESC, i.id ASC`,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// searchClause matches customer name and email, amount, date and status.
func searchClause(db *gorm.DB, query string) (string, []any) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	amountText := "CAST(i.amount AS TEXT)"
	if db.Dialector.Name() == "mysql" {
		amountText = "CAST(i.amount AS CHAR)"
	}
	where := `(LOWER(COALESCE(c.name, '')) LIKE ?
		    OR LOWER(COALESCE(c.email, '')) LIKE ?
		    OR ` + amountText + ` LIKE ?
		    OR i.date LIKE ?
		    OR LOWER(i.status) LIKE ?)`
	return where, []any{pattern, pattern, pattern, pattern, pattern}
}

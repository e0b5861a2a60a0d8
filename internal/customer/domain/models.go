package domain

import "time"

type Customer struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	ImageURL  string    `gorm:"column:image_url;type:varchar(255);not null" json:"image_url"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// CustomerSummary is a customer row with invoice totals in cents.
type CustomerSummary struct {
	Customer
	TotalInvoices int64 `gorm:"column:total_invoices" json:"total_invoices"`
	TotalPending  int64 `gorm:"column:total_pending" json:"total_pending"`
	TotalPaid     int64 `gorm:"column:total_paid" json:"total_paid"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Statuses lists the accepted invoice statuses in display order.
var Statuses = []Status{StatusPending, StatusPaid}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Invoice amounts are stored in cents. Date is the ISO calendar date the
// invoice was created and never changes.
type Invoice struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID string    `gorm:"column:customer_id;type:varchar(36);not null;index" json:"customer_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Status     Status    `gorm:"type:varchar(16);not null" json:"status"`
	Date       string    `gorm:"type:varchar(10);not null;index" json:"date"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceView joins an invoice with its customer. Customer fields are empty
// when the customer no longer exists.
type InvoiceView struct {
	Invoice
	CustomerName     string `gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail    string `gorm:"column:customer_email" json:"customer_email"`
	CustomerImageURL string `gorm:"column:customer_image_url" json:"customer_image_url"`
}

// ToCents converts a major-unit amount to cents, rounding half away from
// zero. ok is false when the cent value does not fit in an int64.
func ToCents(amount decimal.Decimal) (cents int64, ok bool) {
	if amount.IsZero() {
		return 0, true
	}
	// Integer digits of amount; bounds the work Round does on extreme
	// exponents such as 1e999999999.
	magnitude := int64(amount.NumDigits()) + int64(amount.Exponent())
	switch {
	case magnitude > 17:
		return 0, false
	case magnitude < -2:
		return 0, true
	}
	scaled := amount.Mul(decimal.NewFromInt(100)).Round(0).BigInt()
	if !scaled.IsInt64() {
		return 0, false
	}
	return scaled.Int64(), true
}

// FromCents converts stored cents back to major units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

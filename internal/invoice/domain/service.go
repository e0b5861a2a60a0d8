package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	Query string
	Page  int
}

type ListInvoiceFilter struct {
	Query string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceView `json:"invoices"`
}

// CreateInvoiceRequest carries Amount in major units.
type CreateInvoiceRequest struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     Status
}

// UpdateInvoiceRequest replaces customer, amount and status. The invoice date
// is left untouched.
type UpdateInvoiceRequest struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	Status     Status
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (InvoiceView, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	ListAll(context.Context) ([]InvoiceView, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)

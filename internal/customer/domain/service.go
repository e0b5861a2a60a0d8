package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/dashboard/pkg/db/pagination"
)

type ListCustomerRequest struct {
	Query string
	Page  int
}

type ListCustomerFilter struct {
	Query string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []CustomerSummary `json:"customers"`
}

type CreateCustomerRequest struct {
	Name     string
	Email    string
	ImageURL string
}

// UpdateCustomerRequest replaces name and email. An empty ImageURL keeps the
// stored image.
type UpdateCustomerRequest struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) error
	Delete(ctx context.Context, id string) error
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	ListAll(context.Context) ([]Customer, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
	ImageURLs(context.Context) ([]string, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidImage = errors.New("invalid_image")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name, email, err := normalize(req.Name, req.Email)
	if err != nil {
		return domain.Customer{}, err
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return domain.Customer{}, domain.ErrInvalidImage
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, db.Wrap("create customer", err)
	}

	return customer, nil
}

// Update is a blind write: an unknown id updates nothing and succeeds.
func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) error {
	name, email, err := normalize(req.Name, req.Email)
	if err != nil {
		return err
	}
	id, err := s.parseID(req.ID)
	if err != nil {
		s.log.Debug("update skipped", zap.String("reason", "malformed_id"))
		return nil
	}

	customer := domain.Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		UpdatedAt: s.clock.Now(),
	}
	if err := s.repo.Update(ctx, s.db, &customer); err != nil {
		return db.Wrap("update customer", err)
	}
	return nil
}

// Delete removes the customer if present. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		s.log.Debug("delete skipped", zap.String("reason", "malformed_id"))
		return nil
	}
	if err := s.repo.Delete(ctx, s.db, parsed); err != nil {
		return db.Wrap("delete customer", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{Query: strings.TrimSpace(req.Query)}
	page := pagination.Pagination{Page: req.Page}.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListCustomerResponse{}, db.Wrap("count customers", err)
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, db.Wrap("list customers", err)
	}

	customers := make([]domain.CustomerSummary, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		Customers: customers,
	}, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Customer, error) {
	items, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return nil, db.Wrap("list customers", err)
	}
	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item != nil {
			customers = append(customers, *item)
		}
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, db.Wrap("get customer", err)
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetByID(ctx, domain.GetCustomerRequest{ID: id})
	switch err {
	case nil:
		return true, nil
	case domain.ErrNotFound, domain.ErrInvalidID:
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) ImageURLs(ctx context.Context) ([]string, error) {
	urls, err := s.repo.ImageURLs(ctx, s.db)
	if err != nil {
		return nil, db.Wrap("list customer images", err)
	}
	return urls, nil
}

func (s *Service) parseID(value string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return id.String(), nil
}

func normalize(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domain.ErrInvalidName
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", "", domain.ErrInvalidEmail
	}
	return name, email, nil
}

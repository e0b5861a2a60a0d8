package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/invoice/domain"
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

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	customerID, cents, err := normalize(req.CustomerID, req.Amount, req.Status)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Amount:     cents,
		Status:     req.Status,
		Date:       clock.Today(s.clock),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, db.Wrap("create invoice", err)
	}
	return invoice, nil
}

// Update is a blind write: an unknown id updates nothing and succeeds.
func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) error {
	customerID, cents, err := normalize(req.CustomerID, req.Amount, req.Status)
	if err != nil {
		return err
	}
	id, err := parseID(req.ID)
	if err != nil {
		s.log.Debug("update skipped", zap.String("reason", "malformed_id"))
		return nil
	}

	invoice := domain.Invoice{
		ID:         id,
		CustomerID: customerID,
		Amount:     cents,
		Status:     req.Status,
		UpdatedAt:  s.clock.Now(),
	}
	if err := s.repo.Update(ctx, s.db, &invoice); err != nil {
		return db.Wrap("update invoice", err)
	}
	return nil
}

// Delete removes the invoice if present. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		s.log.Debug("delete skipped", zap.String("reason", "malformed_id"))
		return nil
	}
	if err := s.repo.Delete(ctx, s.db, parsed); err != nil {
		return db.Wrap("delete invoice", err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceView, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.InvoiceView{}, db.Wrap("get invoice", err)
	}
	if item == nil {
		return domain.InvoiceView{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{Query: strings.TrimSpace(req.Query)}
	page := pagination.Pagination{Page: req.Page}.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListInvoiceResponse{}, db.Wrap("count invoices", err)
	}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListInvoiceResponse{}, db.Wrap("list invoices", err)
	}

	return domain.ListInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Invoices: deref(items),
	}, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.InvoiceView, error) {
	items, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return nil, db.Wrap("list invoices", err)
	}
	return deref(items), nil
}

func normalize(customerID string, amount decimal.Decimal, status domain.Status) (string, int64, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", 0, domain.ErrInvalidCustomer
	}
	cents, ok := domain.ToCents(amount)
	if !ok || cents <= 0 {
		return "", 0, domain.ErrInvalidAmount
	}
	if !status.Valid() {
		return "", 0, domain.ErrInvalidStatus
	}
	return customerID, cents, nil
}

func parseID(value string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return id.String(), nil
}

func deref(items []*domain.InvoiceView) []domain.InvoiceView {
	out := make([]domain.InvoiceView, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

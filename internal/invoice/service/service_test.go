package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dashboard/internal/clock"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/internal/invoice/repository"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&customerdomain.Customer{}, &domain.Invoice{}))

	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return fixture{svc: svc, db: conn, clock: clk}
}

func (f fixture) customer(t *testing.T, name string) customerdomain.Customer {
	t.Helper()
	c := customerdomain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     name + "@example.com",
		ImageURL:  "/customers/" + name + ".png",
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func TestCreatePersistsCentsAndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "amy")

	created, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: c.ID,
		Amount:     decimal.RequireFromString("12.50"),
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1250, created.Amount)
	assert.Equal(t, "2024-05-01", created.Date)

	got, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1250, got.Amount)
	assert.Equal(t, "12.50", domain.FromCents(got.Amount).StringFixed(2))
	assert.Equal(t, "amy", got.CustomerName)
}

func TestUpdateKeepsDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.customer(t, "amy")
	b := f.customer(t, "balazs")

	created, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: a.ID, Amount: decimal.NewFromInt(5), Status: domain.StatusPending})
	require.NoError(t, err)

	f.clock.Advance(72 * time.Hour)
	require.NoError(t, f.svc.Update(ctx, domain.UpdateInvoiceRequest{
		ID:         created.ID,
		CustomerID: b.ID,
		Amount:     decimal.RequireFromString("99.99"),
		Status:     domain.StatusPaid,
	}))

	got, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.CustomerID)
	assert.EqualValues(t, 9999, got.Amount)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, "2024-05-01", got.Date)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{Amount: decimal.NewFromInt(1), Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
	_, err = f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: "c", Amount: decimal.Zero, Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: "c", Amount: decimal.RequireFromString("0.001"), Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: "c", Amount: decimal.RequireFromString("184467440737095516.17"), Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: "c", Amount: decimal.NewFromInt(1), Status: "draft"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDeleteTwiceSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "amy")

	created, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: c.ID, Amount: decimal.NewFromInt(1), Status: domain.StatusPaid})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSearchAndOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	amy := f.customer(t, "amy")

	for i := 0; i < 7; i++ {
		_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: amy.ID, Amount: decimal.NewFromInt(int64(10 + i)), Status: domain.StatusPending})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, domain.CreateInvoiceRequest{CustomerID: uuid.NewString(), Amount: decimal.NewFromInt(42), Status: domain.StatusPaid})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 8, all.TotalItems)
	assert.Equal(t, 2, all.TotalPages)
	assert.Len(t, all.Invoices, 6)

	paid, err := f.svc.List(ctx, domain.ListInvoiceRequest{Query: "PAID"})
	require.NoError(t, err)
	require.Len(t, paid.Invoices, 1)
	assert.Empty(t, paid.Invoices[0].CustomerName)

	byAmount, err := f.svc.List(ctx, domain.ListInvoiceRequest{Query: "1600"})
	require.NoError(t, err)
	require.Len(t, byAmount.Invoices, 1)
	assert.EqualValues(t, 1600, byAmount.Invoices[0].Amount)

	byName, err := f.svc.List(ctx, domain.ListInvoiceRequest{Query: "Amy"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, byName.TotalItems)

	exported, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, exported, 8)
}

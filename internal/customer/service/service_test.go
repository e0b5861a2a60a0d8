package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Customer{}, &invoicedomain.Invoice{}))

	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		Clock: clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:     "  Evil Rabbit ",
		Email:    "evil@rabbit.com",
		ImageURL: "/customers/evil-rabbit.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Evil Rabbit", created.Name)

	got, err := svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, "/customers/evil-rabbit.png", got.ImageURL)

	ok, err := svc.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateRejectsIncompleteInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Email: "a@b.com", ImageURL: "/x.png"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", Email: "nope", ImageURL: "/x.png"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "A", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestUpdateRetainsImageUnlessReplaced(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Lee", Email: "lee@robinson.com", ImageURL: "/customers/lee.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID, Name: "Lee Robinson", Email: "lee@vercel.com"}))
	got, err := svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Lee Robinson", got.Name)
	assert.Equal(t, "lee@vercel.com", got.Email)
	assert.Equal(t, "/customers/lee.png", got.ImageURL)

	require.NoError(t, svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID, Name: "Lee", Email: "lee@vercel.com", ImageURL: "/customers/lee-2.png"}))
	got, err = svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "/customers/lee-2.png", got.ImageURL)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Hector", Email: "hector@simpson.com", ImageURL: "/customers/hector.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, "not-a-uuid"))

	_, err = svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPaginatesAndTotals(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	var first domain.Customer
	for i := 0; i < 8; i++ {
		c, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:     fmt.Sprintf("Customer %02d", i),
			Email:    fmt.Sprintf("c%d@example.com", i),
			ImageURL: "/customers/c.png",
		})
		require.NoError(t, err)
		if i == 0 {
			first = c
		}
	}
	require.NoError(t, conn.Create(&invoicedomain.Invoice{ID: "i1", CustomerID: first.ID, Amount: 1250, Status: invoicedomain.StatusPending, Date: "2024-05-01"}).Error)
	require.NoError(t, conn.Create(&invoicedomain.Invoice{ID: "i2", CustomerID: first.ID, Amount: 500, Status: invoicedomain.StatusPaid, Date: "2024-05-01"}).Error)

	page1, err := svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 2, page1.TotalPages)
	assert.EqualValues(t, 8, page1.TotalItems)
	require.Len(t, page1.Customers, 6)
	assert.Equal(t, "Customer 00", page1.Customers[0].Name)
	assert.EqualValues(t, 2, page1.Customers[0].TotalInvoices)
	assert.EqualValues(t, 1250, page1.Customers[0].TotalPending)
	assert.EqualValues(t, 500, page1.Customers[0].TotalPaid)

	page2, err := svc.List(ctx, domain.ListCustomerRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Customers, 2)

	search, err := svc.List(ctx, domain.ListCustomerRequest{Query: "C7@EXAMPLE"})
	require.NoError(t, err)
	require.Len(t, search.Customers, 1)
	assert.Equal(t, "Customer 07", search.Customers[0].Name)
}

func TestStorageFailureIsDatabaseError(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Migrator().DropTable(&domain.Customer{}))

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "A", Email: "a@b.com", ImageURL: "/x.png"})
	require.Error(t, err)
	assert.True(t, db.IsDatabaseError(err))
}

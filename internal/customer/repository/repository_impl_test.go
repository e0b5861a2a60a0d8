package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestInsert(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	customer := &domain.Customer{
		ID:        "3958dc9e-712f-4377-85e9-fec4b6a6442a",
		Name:      "Delba de Oliveira",
		Email:     "delba@oliveira.com",
		ImageURL:  "/customers/delba-de-oliveira.png",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO customers \(id, name, email, image_url, created_at, updated_at\)`).
		WithArgs(customer.ID, customer.Name, customer.Email, customer.ImageURL, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, Provide().Insert(context.Background(), db, customer))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateKeepsImageWhenEmpty(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE customers SET name = \$1, email = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs("Lee", "lee@robinson.com", now, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Provide().Update(context.Background(), db, &domain.Customer{
		ID:        "c1",
		Name:      "Lee",
		Email:     "lee@robinson.com",
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReplacesImage(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE customers SET name = \$1, email = \$2, image_url = \$3, updated_at = \$4 WHERE id = \$5`).
		WithArgs("Lee", "lee@robinson.com", "/customers/new.png", now, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Provide().Update(context.Background(), db, &domain.Customer{
		ID:        "c1",
		Name:      "Lee",
		Email:     "lee@robinson.com",
		ImageURL:  "/customers/new.png",
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePropagatesDriverError(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectExec(`DELETE FROM customers WHERE id = \$1`).
		WithArgs("c1").
		WillReturnError(errors.New("connection reset"))

	err := Provide().Delete(context.Background(), db, "c1")
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT id, name, email, image_url, created_at, updated_at\s+FROM customers WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "image_url", "created_at", "updated_at"}))

	customer, err := Provide().FindByID(context.Background(), db, "missing")
	require.NoError(t, err)
	assert.Nil(t, customer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSearchesCaseInsensitively(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "image_url", "created_at", "updated_at",
		"total_invoices", "total_pending", "total_paid",
	}).AddRow("c1", "Amy Burns", "amy@burns.com", "/customers/amy-burns.png", time.Now(), time.Now(), 2, 1250, 8945)

	mock.ExpectQuery(`FROM customers c\s+LEFT JOIN invoices i ON c.id = i.customer_id\s+WHERE LOWER\(c.name\) LIKE \$1 OR LOWER\(c.email\) LIKE \$2`).
		WithArgs("%amy%", "%amy%", 6, 6).
		WillReturnRows(rows)

	items, err := Provide().List(context.Background(), db, domain.ListCustomerFilter{Query: " AMY "}, pagination.Pagination{Page: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Amy Burns", items[0].Name)
	assert.EqualValues(t, 2, items[0].TotalInvoices)
	assert.EqualValues(t, 1250, items[0].TotalPending)
	assert.EqualValues(t, 8945, items[0].TotalPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

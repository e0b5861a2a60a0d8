package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	authdomain "github.com/smallbiznis/dashboard/internal/auth/domain"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run brings the schema up to date. Postgres uses the versioned SQL
// migrations; MySQL and SQLite are migrated from the gorm models.
func Run(conn *gorm.DB, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	dialect := conn.Dialector.Name()
	log.Info("running migrations", zap.String("dialect", dialect))

	if dialect != "postgres" {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&auditdomain.AuditLog{},
	)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

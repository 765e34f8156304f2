package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/invoice-manager/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// Models lists every persisted model, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Company{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.PaymentSettings{},
	}
}

// Migrate runs AutoMigrate for all models.
func Migrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"users", "clients", "invoices", "invoice_items"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// MigrateSQL applies the versioned SQL files in dir to a postgres database.
func MigrateSQL(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return fmt.Errorf("db: init sql migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db: sql migrations: %w", err)
	}
	return nil
}

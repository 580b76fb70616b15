package database

import (
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	// Registers the pure Go "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"

	"trafficportal/internal/modules/notification"
)

// Connect opens PostgreSQL for postgres:// DSNs and falls back to the pure
// Go SQLite driver everywhere else (local development, CI).
func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the notification subsystem's schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&notification.Notification{})
}

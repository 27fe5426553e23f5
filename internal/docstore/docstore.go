// Package docstore is the durable side of the system: documents and their
// version history. The live session layer never calls it on the broadcast
// path; it is reached only by explicit user actions (open, save, revert).
package docstore

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"docsync/internal/models"
)

// Open connects to the database behind dsn and migrates the schema.
// A postgres:// URL selects Postgres; anything else is treated as a
// SQLite path, which keeps local development dependency-free.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Document{}, &models.Version{}); err != nil {
		return nil, err
	}
	return db, nil
}

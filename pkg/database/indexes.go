package database

import (
	"fmt"

	"gorm.io/gorm"
)

// CaseInsensitiveIndexes adds unique indexes over LOWER(username) and
// LOWER(email) on postgres, so rows written outside this service cannot break
// case-insensitive uniqueness. Other dialects rely on lower-cased storage.
func CaseInsensitiveIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	statements := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username));",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email));",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

package db

import (
	"fmt" // Error wrapping

	"spent_api/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Migrate creates the spent table and its indexes
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and the idx_spent_* indexes
	if err := db.AutoMigrate(&domain.Spent{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

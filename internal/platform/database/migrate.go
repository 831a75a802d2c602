// File: internal/platform/database/migrate.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"propdesk_backend/internal/company"
	"propdesk_backend/internal/notification"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/property"
	"propdesk_backend/internal/task"
)

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&profile.Profile{},
		&company.Company{},
		&property.Property{},
		&task.Task{},
		&task.TaskAssignment{},
		&notification.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}

package models

import "gorm.io/gorm"

// Migrate creates or updates every table the addon uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{},
		&User{},
		&Setting{},
		&Folder{},
		&Event{},
	)
}

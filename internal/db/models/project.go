package models

import "time"

// Project is a production the platform tracks folders and tasks for.
type Project struct {
	// ID is the unique identifier for the project.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique project name used in URLs.
	Name string `gorm:"unique;size:64;not null"`
	// Code is the short project code.
	Code string `gorm:"size:16"`
	// Active is false for archived projects.
	Active bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the project was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Project model.
func (Project) TableName() string {
	return "projects"
}

// Package project reads the projects known to the platform.
package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

var (
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a project by name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Project

	err := db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}

		return nil, err
	}

	return &p, nil
}

// Names returns the names of all projects in alphabetical order.
func Names(ctx context.Context, db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	names := []string{}

	err := db.WithContext(ctx).Model(&models.Project{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}

	return names, nil
}

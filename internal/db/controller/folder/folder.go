// Package folder queries the folder hierarchy of projects.
package folder

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

// ErrFolderNotFound is returned when no folder matches a query.
var ErrFolderNotFound = errors.New("no folder found")

// RandomID returns the id of a random folder of the given type.
// project.ErrProjectNotFound is returned when the project (or the folder
// table) does not exist, ErrFolderNotFound when no folder has the type.
func RandomID(ctx context.Context, db *gorm.DB, projectName, folderType string) (string, error) {
	if db == nil {
		return "", project.ErrDBNil
	}

	if !db.Migrator().HasTable(&models.Folder{}) {
		return "", fmt.Errorf("%w: %s", project.ErrProjectNotFound, projectName)
	}

	if _, err := project.Get(ctx, db, projectName); err != nil {
		return "", err
	}

	var ids []string

	err := db.WithContext(ctx).Model(&models.Folder{}).
		Where("project_name = ? AND folder_type = ?", projectName, folderType).
		Order(randomOrder(db)).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return "", err
	}

	if len(ids) == 0 {
		return "", ErrFolderNotFound
	}

	return ids[0], nil
}

// Load retrieves a folder of a project by id.
func Load(ctx context.Context, db *gorm.DB, projectName, id string) (*models.Folder, error) {
	if db == nil {
		return nil, project.ErrDBNil
	}

	var f models.Folder

	err := db.WithContext(ctx).Where("project_name = ? AND id = ?", projectName, id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}

		return nil, err
	}

	return &f, nil
}

// Types returns the distinct folder types used in a project.
func Types(ctx context.Context, db *gorm.DB, projectName string) ([]string, error) {
	if db == nil {
		return nil, project.ErrDBNil
	}

	types := []string{}

	err := db.WithContext(ctx).Model(&models.Folder{}).
		Where("project_name = ?", projectName).
		Distinct("folder_type").
		Order("folder_type").
		Pluck("folder_type", &types).Error
	if err != nil {
		return nil, err
	}

	return types, nil
}

// AsUser returns the folder as the user may see it: only admins get the
// internal data blob.
func AsUser(f *models.Folder, user *models.User) *models.Folder {
	out := *f
	if user == nil || !user.Admin {
		out.Data = nil
	}

	return &out
}

func randomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "RAND()"
	}

	return "RANDOM()"
}

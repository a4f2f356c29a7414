// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

// Open creates a migrated in-memory SQLite database.
// The pool is limited to one connection so every query sees the same memory database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, models.Migrate(db), "failed to migrate test database")

	return db
}

// SeedProject inserts a project and the given folders.
func SeedProject(t *testing.T, db *gorm.DB, name string, folders ...models.Folder) models.Project {
	t.Helper()

	project := models.Project{Name: name, Active: true}
	require.NoError(t, db.Create(&project).Error, "failed to seed project")

	for i := range folders {
		folders[i].ProjectName = name
		require.NoError(t, db.Create(&folders[i]).Error, "failed to seed folder")
	}

	return project
}

// Package setting provides CRUD operations for named JSON settings documents.
package setting

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to read or write a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Key identifies one settings document of an addon.
// Studio documents leave Project and Site empty, site documents carry the
// site id and the user name.
type Key struct {
	Addon   string
	Version string
	Variant string
	Scope   string
	Project string
	Site    string
	User    string
}

// String builds the storage name of the key.
func (k Key) String() string {
	parts := []string{k.Addon, k.Version, k.Variant, k.Scope}

	switch {
	case k.Site != "":
		parts = append(parts, k.Site, k.User)
	case k.Project != "":
		parts = append(parts, k.Project)
	}

	return strings.Join(parts, "/")
}

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// List retrieves every setting whose name starts with prefix.
func List(ctx context.Context, db *gorm.DB, prefix string) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var all []models.Setting

	result := db.WithContext(ctx).Order("name").Find(&all)
	if result.Error != nil {
		return nil, result.Error
	}

	settings := make([]models.Setting, 0, len(all))
	for _, s := range all {
		if strings.HasPrefix(s.Name, prefix) {
			settings = append(settings, s)
		}
	}

	return settings, nil
}

// Set creates or updates a setting by name (upsert operation).
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = models.Setting{Name: name, Value: value}
		if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}

		return &setting, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	setting.Value = value
	if err := db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}

	return &setting, nil
}

// Delete deletes a setting by name.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/models"
	"github.com/pipelinekit/example-addon/internal/uniuri"
)

const (
	keyIDLen  = 12
	secretLen = 32
)

// CreateUser creates an active user and returns it with its API key.
// The key is shown once, only the hash of its secret is stored.
func (s *Service) CreateUser(ctx context.Context, name string, admin bool, projects ...string) (*models.User, string, error) {
	var existing models.User

	err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, "", ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	keyID, secret := uniuri.NewLen(keyIDLen), uniuri.NewLen(secretLen)

	user := models.User{
		Name:       name,
		Active:     true,
		Admin:      admin,
		APIKeyID:   keyID,
		APIKeyHash: models.HashSecret(secret),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(projects) > 0 {
			if err := tx.Where("name IN ?", projects).Find(&user.Projects).Error; err != nil {
				return fmt.Errorf("failed to load projects: %w", err)
			}
		}

		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return &user, keyID + "." + secret, nil
}

// RotateKey replaces the API key of a user and returns the new key.
func (s *Service) RotateKey(ctx context.Context, name string) (string, error) {
	user, err := s.GetUserByName(ctx, name)
	if err != nil {
		return "", err
	}

	keyID, secret := uniuri.NewLen(keyIDLen), uniuri.NewLen(secretLen)

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"api_key_id":   keyID,
		"api_key_hash": models.HashSecret(secret),
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to rotate key: %w", err)
	}

	return keyID + "." + secret, nil
}

// GetUserByName retrieves a user by name.
func (s *Service) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Preload("Projects").Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SetActive enables or disables a user account.
func (s *Service) SetActive(ctx context.Context, name string, active bool) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("name = ?", name).Update("active", active)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authenticate resolves an API key to its active user.
func (s *Service) Authenticate(ctx context.Context, key string) (*models.User, error) {
	keyID, secret, ok := strings.Cut(key, ".")
	if !ok || keyID == "" || secret == "" {
		return nil, ErrMalformedKey
	}

	var user models.User

	err := s.db.WithContext(ctx).Preload("Projects").Where("api_key_id = ?", keyID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidKey
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifySecret(secret) {
		return nil, ErrInvalidKey
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}

// CanReadProject reports whether the user may read data of the project.
func (s *Service) CanReadProject(user *models.User, project string) bool {
	return user != nil && user.Active && user.CanRead(project)
}

// EnsureReadAccess returns ErrForbidden when the user may not read the folder.
func EnsureReadAccess(user *models.User, folder *models.Folder) error {
	if user == nil || !user.Active || !user.CanRead(folder.ProjectName) {
		return fmt.Errorf("%w: folder %s", ErrForbidden, folder.ID)
	}

	return nil
}

package models

import (
	"slices"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents an API user of the addon endpoints.
// Users authenticate with an API key "<APIKeyID>.<secret>"; only the
// argon2id hash of the secret is stored.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"-"`
	// Name is the unique login name.
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Active indicates whether the user may authenticate.
	Active bool `json:"active"`
	// Admin users can read every project and write settings.
	Admin bool `json:"isAdmin"`
	// APIKeyID is the public part of the API key.
	APIKeyID string `gorm:"unique;size:32" json:"-"`
	// APIKeyHash is the Argon2id hash of the secret part of the API key.
	APIKeyHash string `gorm:"size:255" json:"-"`
	// Projects the user can read when not an admin.
	Projects []Project `gorm:"many2many:user_projects" json:"-"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// HashSecret hashes an API key secret using the Argon2id algorithm.
func HashSecret(secret string) string {
	hashed, err := argon2id.CreateHash(secret, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash api key: %v", err)
	}

	return hashed
}

// VerifySecret verifies an API key secret against the stored hash.
func (u *User) VerifySecret(secret string) bool {
	match, err := argon2id.ComparePasswordAndHash(secret, u.APIKeyHash)
	if err != nil {
		log.Error().Msgf("failed to verify api key: %v", err)
		return false
	}

	return match
}

// CanRead reports whether the user may read data of the project.
func (u *User) CanRead(project string) bool {
	if u.Admin {
		return true
	}

	return slices.ContainsFunc(u.Projects, func(p Project) bool {
		return p.Name == project
	})
}

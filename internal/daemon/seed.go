package daemon

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

// seed creates the configured projects and, on an empty user table, the
// admin user. The admin API key is written once to out; the log only gets
// the key id.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB, authService *auth.Service, out io.Writer) error {
	for _, name := range cfg.Seed.Projects {
		p := models.Project{Name: name, Active: true}
		if err := db.WithContext(ctx).Where(models.Project{Name: name}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed project %s: %w", name, err)
		}
	}

	if cfg.Seed.Admin == "" {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	user, key, err := authService.CreateUser(ctx, cfg.Seed.Admin, true)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Warn().Str("user", user.Name).Str("keyID", user.APIKeyID).Msg("Created admin user, its api key is printed once")

	if _, err := fmt.Fprintf(out, "api key of %s: %s\n", user.Name, key); err != nil {
		return fmt.Errorf("print admin key: %w", err)
	}

	return nil
}

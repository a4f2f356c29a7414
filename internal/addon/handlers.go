package addon

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/db/controller/folder"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

// getRandomFolder returns a random folder of the configured folder type.
func (a *Addon) getRandomFolder(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := auth.CurrentUser(c)
	projectName := c.Params("project_name")

	variant, err := a.Variant(c.Query("variant"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	settings, err := a.ProjectSettings(ctx, projectName, variant)
	if err != nil {
		return err
	}

	id, err := folder.RandomID(ctx, a.db, projectName, settings.FolderType)
	if err != nil {
		return err
	}

	f, err := folder.Load(ctx, a.db, projectName, id)
	if err != nil {
		return err
	}

	if err := auth.EnsureReadAccess(user, f); err != nil {
		return err
	}

	return c.JSON(folder.AsUser(f, user))
}

// CachedFavoriteColor returns the favorite color of the production studio
// settings, loading it on first use.
func (a *Addon) CachedFavoriteColor(ctx context.Context) (string, error) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()

	if a.favoriteColor != "" {
		return a.favoriteColor, nil
	}

	s, err := a.StudioSettings(ctx, VariantProduction)
	if err != nil {
		return "", err
	}

	a.favoriteColor = s.GroupedSettings.FavoriteColor

	return a.favoriteColor, nil
}

// OnSettingsChanged refreshes the cached favorite color.
func (a *Addon) OnSettingsChanged(_, updated *Settings) {
	color := updated.GroupedSettings.FavoriteColor
	log.Debug().Msgf("Example addon settings changed. New favorite color is %s", color)

	a.cacheMu.Lock()
	a.favoriteColor = color
	a.cacheMu.Unlock()
}

// OnTaskStatusChanged logs the task status change.
func (a *Addon) OnTaskStatusChanged(ctx context.Context, e *models.Event) error {
	color, err := a.CachedFavoriteColor(ctx)
	if err != nil {
		return err
	}

	log.Debug().Msgf("Example addon says, that %s", e.Description)
	log.Debug().Msgf("Admin's favorite color is %s", color)

	return nil
}

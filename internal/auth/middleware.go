package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

const userLocalsKey = "user"

// RequireUser creates Fiber middleware that authenticates the bearer API key
// and stores the user in the context.
func RequireUser(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		key, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, ErrUnauthenticated.Error())
		}

		user, err := authService.Authenticate(c.UserContext(), strings.TrimSpace(key))
		if err != nil {
			if errors.Is(err, ErrMalformedKey) || errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrUserAccountDisabled) {
				log.Warn().Err(err).Str("ip", c.IP()).Msg("Rejected api key")
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}

			log.Error().Err(err).Msg("Failed to authenticate api key")

			return err
		}

		c.Locals(userLocalsKey, user)

		return c.Next()
	}
}

// RequireAdmin creates Fiber middleware that only lets admin users through.
// It must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, ErrUnauthenticated.Error())
		}

		if !user.Admin {
			log.Warn().Str("user", user.Name).Str("path", c.Path()).Msg("User lacks admin rights")
			return ErrForbidden
		}

		return c.Next()
	}
}

// CurrentUser returns the user RequireUser authenticated, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

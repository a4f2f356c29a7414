// Package handler holds what the REST handler services share.
package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/events"
)

// ErrNilDeps is returned by Init when a dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsMsg)

// Deps are the dependencies of the handler services.
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Auth   *auth.Service
	Addon  *addon.Addon
	Stream *events.Stream
}

// Valid reports whether every dependency is set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.DB != nil && d.Auth != nil && d.Addon != nil && d.Stream != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}

var validate = validator.New()

// BindJSON decodes the request body into out and validates it.
func BindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	return validate.Struct(out)
}

// BindTree decodes the request body as a settings value tree.
func BindTree(c *fiber.Ctx) (map[string]any, error) {
	tree := map[string]any{}
	if err := c.BodyParser(&tree); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	return tree, nil
}

// RequireProjectAccess fails with auth.ErrForbidden when the current user may
// not read projectName. An empty projectName is always allowed.
func RequireProjectAccess(c *fiber.Ctx, projectName string) error {
	if projectName == "" {
		return nil
	}

	user := auth.CurrentUser(c)
	if user == nil {
		return auth.ErrUnauthenticated
	}

	if !user.CanRead(projectName) {
		return auth.ErrForbidden
	}

	return nil
}

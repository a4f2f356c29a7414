// Package action lists and executes the addon actions.
package action

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pipelinekit/example-addon/internal/actions"
	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

const (
	// ListPath lists the actions.
	ListPath = "/actions"
	// ExecutePath runs an action.
	ExecutePath = "/actions/execute"
)

// Service is the actions handler service.
type Service struct {
	handler.Service
	addon    *addon.Addon
	registry *actions.Registry
}

// Init registers the action routes on the addon router.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.addon = deps.Addon
	s.registry = deps.Addon.Actions

	router.Get(ListPath, s.List)
	router.Post(ExecutePath, s.Execute)

	return nil
}

// List returns the actions available in a project.
func (s *Service) List(c *fiber.Ctx) error {
	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	projectName := c.Query(handler.QueryProject)
	if err := handler.RequireProjectAccess(c, projectName); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"actions": s.registry.List(projectName, variant)})
}

// Execute runs the action described by the request body.
func (s *Service) Execute(c *fiber.Ctx) error {
	var ac actions.Context
	if err := handler.BindJSON(c, &ac); err != nil {
		return err
	}

	variant, err := s.addon.Variant(ac.Variant)
	if err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, ac.ProjectName); err != nil {
		return err
	}

	ac.Variant = variant
	ac.User = auth.CurrentUser(c).Name

	resp, err := s.registry.Execute(c.UserContext(), ac)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

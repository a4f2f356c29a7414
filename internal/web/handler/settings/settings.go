// Package settings serves the addon settings schema and the stored overrides
// of every scope.
package settings

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/schema"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

const (
	// SchemaPath renders the settings form.
	SchemaPath = "/schema"
	// StudioPath holds the studio overrides.
	StudioPath = "/settings"
	// ProjectPath holds the overrides of a project.
	ProjectPath = "/settings/:" + handler.ParamProjectName
	// SitePath holds the site settings of the current user.
	SitePath = "/site-settings/:site_id"

	queryScope = "scope"
)

// Response carries the effective settings next to the stored overrides.
type Response struct {
	Variant     string         `json:"variant,omitempty"`
	ProjectName string         `json:"projectName,omitempty"`
	SiteID      string         `json:"siteId,omitempty"`
	Settings    any            `json:"settings"`
	Overrides   map[string]any `json:"overrides"`
}

// Service is the settings handler service.
type Service struct {
	handler.Service
	addon *addon.Addon
	deps  *handler.Deps
}

// Init registers the settings routes on the addon router.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps
	s.addon = deps.Addon

	router.Get(SchemaPath, s.Schema)
	router.Get(StudioPath, s.GetStudio)
	router.Post(StudioPath, auth.RequireAdmin(), s.PostStudio)
	router.Get(ProjectPath, s.GetProject)
	router.Post(ProjectPath, auth.RequireAdmin(), s.PostProject)
	router.Get(SitePath, s.GetSite)
	router.Post(SitePath, s.PostSite)

	return nil
}

// Schema renders the settings form of the studio and project scopes, or of
// the site scope with ?scope=site.
func (s *Service) Schema(c *fiber.Ctx) error {
	ctx := c.UserContext()

	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	projectName := c.Query(handler.QueryProject)
	if projectName != "" {
		if err := handler.RequireProjectAccess(c, projectName); err != nil {
			return err
		}

		if _, err := project.Get(ctx, s.deps.DB, projectName); err != nil {
			return err
		}
	}

	m := s.addon.SettingsModel()

	switch c.Query(queryScope) {
	case "", string(schema.ScopeStudio), string(schema.ScopeProject):
	case string(schema.ScopeSite):
		m = s.addon.SiteSettingsModel()
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown scope "+c.Query(queryScope))
	}

	doc, err := schema.Render(ctx, m, schema.ResolveContext{
		Settings:    s.addon,
		ProjectName: projectName,
		Variant:     variant,
	})
	if err != nil {
		return err
	}

	return c.JSON(doc)
}

// GetStudio returns the studio settings of a variant.
func (s *Service) GetStudio(c *fiber.Ctx) error {
	ctx := c.UserContext()

	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	tree, err := s.addon.SettingsTree(ctx, "", variant)
	if err != nil {
		return err
	}

	overrides, err := s.addon.StudioOverrides(ctx, variant)
	if err != nil {
		return err
	}

	return c.JSON(Response{Variant: variant, Settings: tree, Overrides: overrides})
}

// PostStudio replaces the studio overrides of a variant.
func (s *Service) PostStudio(c *fiber.Ctx) error {
	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	tree, err := handler.BindTree(c)
	if err != nil {
		return err
	}

	if err := s.addon.SaveStudioOverrides(c.UserContext(), variant, tree); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetProject returns the settings of a project.
func (s *Service) GetProject(c *fiber.Ctx) error {
	ctx := c.UserContext()
	projectName := c.Params(handler.ParamProjectName)

	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, projectName); err != nil {
		return err
	}

	if _, err := project.Get(ctx, s.deps.DB, projectName); err != nil {
		return err
	}

	tree, err := s.addon.SettingsTree(ctx, projectName, variant)
	if err != nil {
		return err
	}

	overrides, err := s.addon.ProjectOverrides(ctx, projectName, variant)
	if err != nil {
		return err
	}

	return c.JSON(Response{Variant: variant, ProjectName: projectName, Settings: tree, Overrides: overrides})
}

// PostProject replaces the overrides of a project.
func (s *Service) PostProject(c *fiber.Ctx) error {
	variant, err := s.addon.Variant(c.Query(handler.QueryVariant))
	if err != nil {
		return err
	}

	tree, err := handler.BindTree(c)
	if err != nil {
		return err
	}

	if err := s.addon.SaveProjectOverrides(c.UserContext(), c.Params(handler.ParamProjectName), variant, tree); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetSite returns the site settings of the current user.
func (s *Service) GetSite(c *fiber.Ctx) error {
	ctx := c.UserContext()
	siteID := c.Params("site_id")
	user := auth.CurrentUser(c)

	settings, err := s.addon.SiteSettings(ctx, siteID, user.Name)
	if err != nil {
		return err
	}

	overrides, err := s.addon.SiteOverrides(ctx, siteID, user.Name)
	if err != nil {
		return err
	}

	return c.JSON(Response{SiteID: siteID, Settings: settings, Overrides: overrides})
}

// PostSite replaces the site settings of the current user.
func (s *Service) PostSite(c *fiber.Ctx) error {
	tree, err := handler.BindTree(c)
	if err != nil {
		return err
	}

	user := auth.CurrentUser(c)
	if err := s.addon.SaveSiteSettings(c.UserContext(), c.Params("site_id"), user.Name, tree); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Package info reports who is calling which addon.
package info

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

// Path is the path of the info endpoint below /api.
const Path = "/info"

// Response is the info document.
type Response struct {
	Addon   string `json:"addon"`
	Version string `json:"version"`
	User    string `json:"user"`
	Admin   bool   `json:"isAdmin"`
}

// Service is the info handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the info route.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps
	router.Get(Path, s.Get)

	return nil
}

// Get returns the addon identity and the current user.
func (s *Service) Get(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return auth.ErrUnauthenticated
	}

	return c.JSON(Response{
		Addon:   s.deps.Addon.Name,
		Version: s.deps.Addon.Version,
		User:    user.Name,
		Admin:   user.Admin,
	})
}

// Package manifest serves the addon manifest and mounts the endpoints the
// addon registered itself.
package manifest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

// Service is the manifest handler service.
type Service struct {
	handler.Service
	addon *addon.Addon
}

// Init registers the manifest and every addon endpoint on the addon router.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.addon = deps.Addon

	router.Get(handler.RouterRootPath, s.Get)

	for _, ep := range s.addon.Endpoints() {
		log.Debug().Str("method", ep.Method).Str("path", ep.Path).Msg("mount addon endpoint")
		router.Add(ep.Method, "/"+ep.Path, ep.Handler)
	}

	return nil
}

// Get returns the addon manifest.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.addon.Manifest())
}

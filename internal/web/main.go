// Package web serves the addon REST API.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/actions"
	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	accesslog "github.com/pipelinekit/example-addon/internal/logger/adapter/fiber"
	"github.com/pipelinekit/example-addon/internal/web/apierror"
	"github.com/pipelinekit/example-addon/internal/web/handler"
	"github.com/pipelinekit/example-addon/internal/web/handler/action"
	"github.com/pipelinekit/example-addon/internal/web/handler/events"
	"github.com/pipelinekit/example-addon/internal/web/handler/info"
	"github.com/pipelinekit/example-addon/internal/web/handler/manifest"
	"github.com/pipelinekit/example-addon/internal/web/handler/settings"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
	// APIPath is the prefix of every authenticated route.
	APIPath = "/api"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// checkalive fails first so load balancers stop sending traffic.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while the service is alive and 503 while it shuts down.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// ErrorMappings are the addon errors the API maps on top of the defaults.
func ErrorMappings() []apierror.Mapping {
	return []apierror.Mapping{
		{Err: addon.ErrAddonNotFound, Status: fiber.StatusNotFound},
		{Err: addon.ErrInvalidVariant, Status: fiber.StatusBadRequest},
		{Err: actions.ErrUnknownAction, Status: fiber.StatusBadRequest},
		{Err: actions.ErrInvalidContext, Status: fiber.StatusBadRequest},
	}
}

// New creates the web service. Every handler service is initialized with deps.
func New(deps *handler.Deps) (*Service, error) {
	if !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	cfg := deps.Cfg

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   apierror.Handler(ErrorMappings()...),
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(accesslog.New(accesslog.Config{
		Log:  cfg.Log,
		Skip: []string{CheckAlivePath, MetricsPath},
		User: func(c *fiber.Ctx) string {
			if user := auth.CurrentUser(c); user != nil {
				return user.Name
			}

			return ""
		},
	}))

	service := &Service{App: app, deps: deps}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(APIPath, auth.RequireUser(deps.Auth))
	addonRouter := api.Group(strings.TrimPrefix(deps.Addon.URL(), APIPath))

	inits := []struct {
		name    string
		router  fiber.Router
		service handler.Service
	}{
		{"info", api, new(info.Service)},
		{"events", api, new(events.Service)},
		{"manifest", addonRouter, new(manifest.Service)},
		{"settings", addonRouter, new(settings.Service)},
		{"actions", addonRouter, new(action.Service)},
	}

	for _, i := range inits {
		if err := i.service.Init(i.router, deps); err != nil {
			return nil, fmt.Errorf("init %s handler: %w", i.name, err)
		}
	}

	// any other addon name or version
	api.All("/addons/*", func(*fiber.Ctx) error {
		return addon.ErrAddonNotFound
	})

	return service, nil
}

// Package daemon wires the database, the addon and the web service together.
package daemon

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/db/dsn"
	"github.com/pipelinekit/example-addon/internal/db/models"
	"github.com/pipelinekit/example-addon/internal/events"
	"github.com/pipelinekit/example-addon/internal/web"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start serves the API until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	addr := ":" + strconv.Itoa(d.cfg.Webserver.Port)

	go func() {
		if err := d.webService.Start(addr); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	log.Info().Str("addr", addr).Msg("web service started")
	d.webService.WaitShutdown()

	return nil
}

// OpenDB connects to the configured database and migrates it.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dsn.Dialector(&cfg.DB)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.New(&log.Logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// NewAddon creates and initializes the addon of the configuration.
func NewAddon(cfg *config.Config, db *gorm.DB, stream *events.Stream) (*addon.Addon, error) {
	a := addon.New(db, cfg.Addon.Name, cfg.Addon.Version)
	if err := a.SetDefaultVariant(cfg.Addon.Variant); err != nil {
		return nil, fmt.Errorf("addon.variant %q: %w", cfg.Addon.Variant, err)
	}

	a.Initialize(stream)

	return a, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, handler.ErrNilDeps
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(db)

	if err := seed(ctx, cfg, db, authService, os.Stdout); err != nil {
		return nil, err
	}

	stream := events.NewStream(db)

	a, err := NewAddon(cfg, db, stream)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(&handler.Deps{
		Cfg:    cfg,
		DB:     db,
		Auth:   authService,
		Addon:  a,
		Stream: stream,
	})
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, webService: webService}, nil
}

// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/config"
)

// Create builds the Data Source Name of the configured engine.
func Create(cfg *config.DB) string {
	switch cfg.GormEngine {
	case "postgres":
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		if cfg.Extras != "" {
			out += " " + cfg.Extras
		}

		return out
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.Extras)
	default:
		if cfg.Extras != "" {
			return cfg.Name + "?" + cfg.Extras
		}

		return cfg.Name
	}
}

// Dialector opens the gorm driver of the configured engine.
func Dialector(cfg *config.DB) (gorm.Dialector, error) {
	switch cfg.GormEngine {
	case "postgres":
		return postgres.Open(Create(cfg)), nil
	case "mysql":
		return mysql.Open(Create(cfg)), nil
	case "sqlite":
		return sqlite.Open(Create(cfg)), nil
	default:
		return nil, config.ErrUnknownEngine
	}
}

package config

import (
	"time"

	"github.com/pipelinekit/example-addon/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool   `mapstructure:"devMode"` // verbose gorm logging
	Title     string `mapstructure:"title"`
	DB        DB     `mapstructure:"db"`
	Log       logger.Log `mapstructure:"log"`
	Webserver Webserver `mapstructure:"webserver"`
	Addon     Addon     `mapstructure:"addon"`
	Service   Service   `mapstructure:"service"`
	Seed      Seed      `mapstructure:"seed"`
}

// DB holds the database configuration settings.
type DB struct {
	GormEngine string `mapstructure:"gormEngine"` // postgres, mysql or sqlite
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"` // database name, file path for sqlite
	Extras     string `mapstructure:"extras"`
}

// Webserver implement webserver settings.
type Webserver struct {
	Port           int    `mapstructure:"port"`         // listening port
	URL            string `mapstructure:"url"`          // public base url
	ShutDownTime   int    `mapstructure:"shutDownTime"` // seconds to wait for open requests
	DisableRecover bool   `mapstructure:"disableRecover"`
}

// Addon identifies the addon served by this process.
type Addon struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Variant string `mapstructure:"variant"` // default settings variant
}

// Service configures the background worker.
type Service struct {
	ServerURL    string        `mapstructure:"serverURL"`
	APIKey       string        `mapstructure:"apiKey"`
	Sender       string        `mapstructure:"sender"` // defaults to example-service-<hostname>
	SourceTopic  string        `mapstructure:"sourceTopic"`
	TargetTopic  string        `mapstructure:"targetTopic"`
	MaxRetries   int           `mapstructure:"maxRetries"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	ProcessDelay time.Duration `mapstructure:"processDelay"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Seed is created on first start of an empty database.
type Seed struct {
	Admin    string   `mapstructure:"admin"`
	Projects []string `mapstructure:"projects"`
}

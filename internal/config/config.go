// Package config handles input from etc/*.toml files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvJSON holds a JSON document merged over the file configuration.
const EnvJSON = "EXAMPLE_ADDON_CONFIG_JSON"

const invalidErrMessage = "invalid config"

// ReadConfig reads main.toml from the directory path and merges the JSON
// of EnvJSON on top.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(filepath.Join(path, "main.toml"))

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if env := os.Getenv(EnvJSON); env != "" {
		v.SetConfigType("json")

		if err := v.MergeConfig(strings.NewReader(env)); err != nil {
			return Config{}, errors.Wrap(err, "failed to merge "+EnvJSON)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.gormEngine", "sqlite")
	v.SetDefault("db.name", "example-addon.db")
	v.SetDefault("webserver.shutDownTime", 5) //nolint:mnd
	v.SetDefault("addon.variant", "production")
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.appName", "example-addon")
	v.SetDefault("log.serviceName", "example-addon")
	v.SetDefault("log.console.enabled", true)
}

// validate the settings every command needs.
func validate(c *Config) error {
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Addon.Name == "" || c.Addon.Version == "" {
		return errors.Wrap(ErrAddonNameEmpty, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.Wrap(ErrUnknownEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5
	}

	return nil
}

// ValidateService checks the settings the worker service needs on top of validate.
func ValidateService(c *Config) error {
	if c.Service.ServerURL == "" {
		return errors.Wrap(ErrServerURLEmpty, invalidErrMessage)
	}

	if c.Service.APIKey == "" {
		return errors.Wrap(ErrAPIKeyEmpty, invalidErrMessage)
	}

	return nil
}

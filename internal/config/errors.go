package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrAddonNameEmpty error if config addon.name or addon.version is empty.
	ErrAddonNameEmpty = errors.New("config addon.name and addon.version can not be empty")

	// ErrUnknownEngine error if config db.gormEngine is not supported.
	ErrUnknownEngine = errors.New("config db.gormEngine must be postgres, mysql or sqlite")

	// ErrServerURLEmpty error if config service.serverURL is empty.
	ErrServerURLEmpty = errors.New("config service.serverURL can not be empty")

	// ErrAPIKeyEmpty error if config service.apiKey is empty.
	ErrAPIKeyEmpty = errors.New("config service.apiKey can not be empty")
)

// Package fiber provides a zerolog access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/logger"
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Log selects the access log writers.
	Log logger.Log

	// CacheControlError is set on responses the error handler failed on.
	CacheControlError string

	// Skip lists paths that are never logged when Log.DisableCheckAlive is set.
	Skip []string

	// User names the caller of a request, if known.
	User func(c *fiber.Ctx) string

	// Output overrides the configured writers.
	Output io.Writer
}

// ConfigDefault is the default config.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	CacheControlError: "max-age=0",
	Skip:              []string{"/checkalive"},
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	if cfg.Skip == nil {
		cfg.Skip = ConfigDefault.Skip
	}

	return cfg
}

func writer(cfg Config) io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	var writers []io.Writer

	if cfg.Log.File.Enabled {
		if err := os.MkdirAll(cfg.Log.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Log.File.Path).Msg("can't create access log directory")
		} else {
			writers = append(writers, logger.NewRollingFile(cfg.Log.File.Path, cfg.Log.File.Access))
		}
	}

	if cfg.Log.Console.Enabled && cfg.Log.EnableAccessLogToConsole {
		if cfg.Log.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return zerolog.MultiLevelWriter(writers...)
}

// New creates the access log middleware. Errors of the handler chain are
// passed to the app error handler first so the logged status is the one the
// client receives.
func New(config ...Config) fiber.Handler {
	var (
		cfg        = configDefault(config...)
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	access := zerolog.New(writer(cfg)).With().Timestamp().Logger().Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		once.Do(func() {
			errHandler = c.App().ErrorHandler
		})

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := errHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		// fasthttp normalizes the path, the original URI is logged.
		uri := string(c.Request().RequestURI())

		if cfg.Log.DisableCheckAlive && slices.Contains(cfg.Skip, c.Path()) {
			return nil
		}

		entry := access.Log().
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64("elapsed", elapsed).
			Str("uri", uri).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent))

		if cfg.User != nil {
			if user := cfg.User(c); user != "" {
				entry.Str("user", user)
			}
		}

		if chainErr != nil {
			entry.Err(chainErr)
		}

		entry.Send()

		return nil
	}
}

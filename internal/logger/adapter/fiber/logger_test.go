package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/example-addon/internal/logger"
	adapter "github.com/pipelinekit/example-addon/internal/logger/adapter/fiber"
)

type accessEntry struct {
	IP      string  `json:"ip"`
	Status  int     `json:"status"`
	Elapsed float64 `json:"elapsed"`
	URI     string  `json:"uri"`
	Method  string  `json:"method"`
	Host    string  `json:"host"`
	User    string  `json:"user"`
	Error   string  `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(adapter.New(cfg))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("hello test")
	})
	app.Get("/checkalive", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/fail", func(*fiber.Ctx) error {
		return errors.New("broken") //nolint:err113
	})

	return app
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantURI    string
		wantError  string
	}{
		{name: "root", target: "/", wantStatus: fiber.StatusOK, wantURI: "/"},
		{name: "query kept", target: "/?test=123", wantStatus: fiber.StatusOK, wantURI: "/?test=123"},
		{
			name:       "multiple slashes kept",
			target:     "//test",
			wantStatus: fiber.StatusNotFound,
			wantURI:    "//test",
			wantError:  "Cannot GET //test",
		},
		{
			name:       "chain error",
			target:     "/fail",
			wantStatus: fiber.StatusInternalServerError,
			wantURI:    "/fail",
			wantError:  "broken",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			app := newApp(adapter.Config{
				Output: &buf,
				User:   func(*fiber.Ctx) string { return "ann" },
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.target, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Performance"))

			var entry accessEntry
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())

			assert.Equal(t, tc.wantStatus, entry.Status)
			assert.Equal(t, tc.wantURI, entry.URI)
			assert.Equal(t, fiber.MethodGet, entry.Method)
			assert.Equal(t, "example.com", entry.Host)
			assert.Equal(t, "ann", entry.User)
			assert.Equal(t, tc.wantError, entry.Error)
		})
	}
}

func TestNew_SkipCheckAlive(t *testing.T) {
	var buf bytes.Buffer

	app := newApp(adapter.Config{
		Output: &buf,
		Log:    logger.Log{DisableCheckAlive: true},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/checkalive", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, buf.String())

	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestNew_NoWriters(t *testing.T) {
	app := newApp(adapter.Config{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pipelinekit/example-addon/internal/db/controller/event"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

// ErrRequestFailed is returned when the server answers with an error status
// or cannot be reached.
var ErrRequestFailed = errors.New("request failed")

// Info is what the server reports about itself and the calling user.
type Info struct {
	Addon   string `json:"addon"`
	Version string `json:"version"`
	User    string `json:"user"`
}

// Client talks to the addon server REST API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

const defaultTimeout = 10 * time.Second

// NewClient creates a client for the server at baseURL. A zero timeout
// means the default of ten seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	a.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Timeout(c.timeout)

	if body != nil {
		a.JSON(body)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}

	// Bytes releases the agent.
	code, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, errors.Join(errs...))
	}

	if code >= fiber.StatusBadRequest {
		return code, fmt.Errorf("%w: %s %s: %d %s", ErrRequestFailed, method, path, code, strings.TrimSpace(string(raw)))
	}

	if out != nil && code != fiber.StatusNoContent && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return code, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	return code, nil
}

// Ping checks the server is reachable and the API key is valid.
func (c *Client) Ping(ctx context.Context) (*Info, error) {
	var info Info
	if _, err := c.do(ctx, fiber.MethodGet, "/api/info", nil, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// EnrollEventJob asks for the next job. It returns nil when nothing waits.
func (c *Client) EnrollEventJob(ctx context.Context, req event.EnrollRequest) (*models.Event, error) {
	var job models.Event

	code, err := c.do(ctx, fiber.MethodPost, "/api/enroll", req, &job)
	if err != nil {
		return nil, err
	}

	if code == fiber.StatusNoContent {
		return nil, nil //nolint:nilnil
	}

	return &job, nil
}

// GetEvent loads an event by id.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if _, err := c.do(ctx, fiber.MethodGet, "/api/events/"+id, nil, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

// UpdateEvent changes the status and the description of an event.
func (c *Client) UpdateEvent(ctx context.Context, id string, patch event.Patch) error {
	_, err := c.do(ctx, fiber.MethodPatch, "/api/events/"+id, patch, nil)
	return err
}

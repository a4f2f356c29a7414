// Package addon implements the example addon: its settings, endpoints,
// event handlers and actions.
package addon

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/actions"
	"github.com/pipelinekit/example-addon/internal/events"
	"github.com/pipelinekit/example-addon/internal/schema"
)

const (
	// VariantProduction is the default settings variant.
	VariantProduction = "production"
	// VariantStaging is the settings variant for testing changes.
	VariantStaging = "staging"

	// TaskStatusChangedTopic is emitted by the host when a task changes status.
	TaskStatusChangedTopic = "entity.task.status_changed"
	// SettingsChangedTopic is emitted whenever addon settings are saved.
	SettingsChangedTopic = "settings.changed"
)

var (
	// ErrInvalidVariant is returned for unknown settings variants.
	ErrInvalidVariant = errors.New("invalid settings variant")
	// ErrAddonNotFound is returned when a request names another addon or version.
	ErrAddonNotFound = errors.New("addon not found")

	validate = validator.New()
)

// Endpoint is a REST route registered by the addon under its URL.
type Endpoint struct {
	Method  string
	Path    string
	Handler fiber.Handler
}

// ServiceInfo declares a service the addon ships.
type ServiceInfo struct {
	Image string `json:"image"`
}

// Addon is the example addon.
type Addon struct {
	Name    string
	Title   string
	Version string

	// FrontendScopes tells the web app where to show the addon frontend.
	FrontendScopes map[string]map[string]string
	Services       map[string]ServiceInfo

	Actions *actions.Registry

	db             *gorm.DB
	stream         *events.Stream
	settingsModel  *schema.Model
	siteModel      *schema.Model
	defaultVariant string

	mu        sync.RWMutex
	endpoints []Endpoint

	cacheMu       sync.Mutex
	favoriteColor string
}

// New creates the addon. Call Initialize before serving it.
func New(db *gorm.DB, name, version string) *Addon {
	a := &Addon{
		Name:           name,
		Title:          "Example addon",
		Version:        version,
		FrontendScopes: map[string]map[string]string{"project": {"sidebar": "hierarchy"}},
		Services: map[string]ServiceInfo{
			"ExampleService": {Image: name + "-service:" + version},
		},
		db:             db,
		settingsModel:  NewSettingsModel(db),
		siteModel:      NewSiteSettingsModel(),
		defaultVariant: VariantProduction,
	}
	a.Actions = actions.New(db, a.URL())

	return a
}

// URL is the path prefix of the addon endpoints.
func (a *Addon) URL() string {
	return "/api/addons/" + a.Name + "/" + a.Version
}

// SettingsModel returns the settings declaration.
func (a *Addon) SettingsModel() *schema.Model {
	return a.settingsModel
}

// SiteSettingsModel returns the site settings declaration.
func (a *Addon) SiteSettingsModel() *schema.Model {
	return a.siteModel
}

// AddEndpoint registers handler for method and path, relative to URL.
func (a *Addon) AddEndpoint(path, method string, handler fiber.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.endpoints = append(a.endpoints, Endpoint{Method: method, Path: path, Handler: handler})
}

// Endpoints returns the registered endpoints in registration order.
func (a *Addon) Endpoints() []Endpoint {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]Endpoint(nil), a.endpoints...)
}

// Initialize registers the addon endpoints and event handlers.
func (a *Addon) Initialize(stream *events.Stream) {
	log.Info().Str("addon", a.Name).Str("version", a.Version).Msg("Example addon INIT")

	a.AddEndpoint("get-random-folder/:project_name", fiber.MethodGet, a.getRandomFolder)

	a.stream = stream
	if stream != nil {
		stream.Subscribe(TaskStatusChangedTopic, a.OnTaskStatusChanged)
	}
}

// ParseVariant returns the variant named v, VariantProduction when v is empty.
func ParseVariant(v string) (string, error) {
	if v == "" {
		return VariantProduction, nil
	}

	if err := validate.Var(v, "oneof=production staging"); err != nil {
		return "", ErrInvalidVariant
	}

	return v, nil
}

// SetDefaultVariant changes the variant Variant falls back to.
func (a *Addon) SetDefaultVariant(v string) error {
	if v == "" {
		return nil
	}

	v, err := ParseVariant(v)
	if err != nil {
		return err
	}

	a.defaultVariant = v

	return nil
}

// Variant is ParseVariant with the addon default for an empty v.
func (a *Addon) Variant(v string) (string, error) {
	if v == "" {
		return a.defaultVariant, nil
	}

	return ParseVariant(v)
}

// EndpointInfo describes a registered endpoint in the manifest.
type EndpointInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Manifest is what the host shows about an installed addon.
type Manifest struct {
	Name           string                       `json:"name"`
	Title          string                       `json:"title"`
	Version        string                       `json:"version"`
	URL            string                       `json:"url"`
	FrontendScopes map[string]map[string]string `json:"frontendScopes"`
	Services       map[string]ServiceInfo       `json:"services"`
	Endpoints      []EndpointInfo               `json:"endpoints"`
}

// Manifest describes the addon.
func (a *Addon) Manifest() Manifest {
	endpoints := a.Endpoints()

	m := Manifest{
		Name:           a.Name,
		Title:          a.Title,
		Version:        a.Version,
		URL:            a.URL(),
		FrontendScopes: a.FrontendScopes,
		Services:       a.Services,
		Endpoints:      make([]EndpointInfo, len(endpoints)),
	}

	for i, ep := range endpoints {
		m.Endpoints[i] = EndpointInfo{Method: ep.Method, Path: a.URL() + "/" + ep.Path}
	}

	return m
}

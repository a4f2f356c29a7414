// Package actions lists and executes the simple actions the addon shows in
// the browser and the launcher.
package actions

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/controller/folder"
)

const (
	// FolderActionID loads the selected folder and reports its name.
	FolderActionID = "example-folder-action"
	// TaskActionID launches an external program for the selected tasks.
	TaskActionID = "example-task-action"

	addonURLPlaceholder = "{addon_url}"
)

var (
	// ErrUnknownAction is returned when no action has the requested identifier.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidContext is returned when the execution context does not fit the action.
	ErrInvalidContext = errors.New("invalid action context")
)

// Manifest describes an action shown in the UI.
type Manifest struct {
	Identifier          string   `json:"identifier"`
	Label               string   `json:"label"`
	Category            string   `json:"category"`
	Order               int      `json:"order"`
	Icon                string   `json:"icon,omitempty"`
	EntityType          string   `json:"entityType"`
	EntitySubtypes      []string `json:"entitySubtypes,omitempty"`
	AllowMultiselection bool     `json:"allowMultiselection"`
}

// Context is what the UI knows when the user triggers an action.
type Context struct {
	Identifier  string   `json:"identifier"  validate:"required"`
	ProjectName string   `json:"projectName" validate:"required"`
	EntityType  string   `json:"entityType"  validate:"required"`
	EntityIDs   []string `json:"entityIds"   validate:"required,min=1"`
	Variant     string   `json:"variant"`
	User        string   `json:"-"`
}

// ResponseType tells the caller how to present a Response.
type ResponseType string

const (
	// ResponseServer carries a message for the user.
	ResponseServer ResponseType = "server"
	// ResponseLauncher asks the launcher to run a program with Args.
	ResponseLauncher ResponseType = "launcher"
)

// Response is the result of an executed action.
type Response struct {
	Type    ResponseType `json:"type"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Args    []string     `json:"args,omitempty"`
}

// Registry holds the actions of one addon.
type Registry struct {
	db        *gorm.DB
	addonURL  string
	manifests []Manifest
}

// New creates the registry of the example actions. addonURL replaces the
// {addon_url} placeholder of the icons.
func New(db *gorm.DB, addonURL string) *Registry {
	return &Registry{
		db:       db,
		addonURL: strings.TrimSuffix(addonURL, "/"),
		manifests: []Manifest{
			{
				Identifier: FolderActionID,
				Label:      "Example Folder Action",
				Category:   "Server",
				Order:      100,
				Icon:       addonURLPlaceholder + "/public/icons/maya.png",
				EntityType: "folder",
			},
			{
				Identifier:          TaskActionID,
				Label:               "Example Task Action",
				Category:            "Launcher",
				Order:               100,
				Icon:                addonURLPlaceholder + "/public/icons/nuke.png",
				EntityType:          "task",
				AllowMultiselection: true,
			},
		},
	}
}

// List returns the manifests ordered by category and order. The actions do
// not depend on the project or the variant.
func (r *Registry) List(_, _ string) []Manifest {
	out := make([]Manifest, len(r.manifests))

	for i, m := range r.manifests {
		m.Icon = strings.ReplaceAll(m.Icon, addonURLPlaceholder, r.addonURL)
		m.EntitySubtypes = slices.Clone(m.EntitySubtypes)
		out[i] = m
	}

	slices.SortStableFunc(out, func(a, b Manifest) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Order, b.Order))
	})

	return out
}

// Execute runs the action named by ac.Identifier.
func (r *Registry) Execute(ctx context.Context, ac Context) (*Response, error) {
	i := slices.IndexFunc(r.manifests, func(m Manifest) bool { return m.Identifier == ac.Identifier })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, ac.Identifier)
	}

	if err := check(r.manifests[i], ac); err != nil {
		return nil, err
	}

	log.Debug().Str("action", ac.Identifier).Str("project", ac.ProjectName).Str("user", ac.User).
		Strs("entities", ac.EntityIDs).Msg("executing action")

	switch ac.Identifier {
	case FolderActionID:
		f, err := folder.Load(ctx, r.db, ac.ProjectName, ac.EntityIDs[0])
		if err != nil {
			return nil, err
		}

		return &Response{Type: ResponseServer, Success: true, Message: "Action performed on " + f.Name}, nil
	default:
		return &Response{Type: ResponseLauncher, Success: true, Args: []string{"blabla"}}, nil
	}
}

func check(m Manifest, ac Context) error {
	switch {
	case len(ac.EntityIDs) == 0:
		return fmt.Errorf("%w: no entity selected", ErrInvalidContext)
	case len(ac.EntityIDs) > 1 && !m.AllowMultiselection:
		return fmt.Errorf("%w: %s accepts a single %s", ErrInvalidContext, m.Identifier, m.EntityType)
	case ac.EntityType != m.EntityType:
		return fmt.Errorf("%w: %s expects %s, got %s", ErrInvalidContext, m.Identifier, m.EntityType, ac.EntityType)
	}

	return nil
}

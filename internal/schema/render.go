package schema

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Document is the form description a frontend renders.
type Document struct {
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Layout      Layout      `json:"layout,omitempty"`
	IsGroup     bool        `json:"isGroup,omitempty"`
	Fields      []*FieldDoc `json:"fields"`
}

// FieldDoc describes one field of a Document.
type FieldDoc struct {
	Name            string      `json:"name"`
	Type            Kind        `json:"type"`
	Title           string      `json:"title,omitempty"`
	Description     string      `json:"description,omitempty"`
	Placeholder     string      `json:"placeholder,omitempty"`
	Widget          string      `json:"widget,omitempty"`
	Section         string      `json:"section,omitempty"`
	Scope           []Scope     `json:"scope"`
	Default         any         `json:"default,omitempty"`
	Enum            []Item      `json:"enum,omitempty"`
	ConditionalEnum bool        `json:"conditionalEnum,omitempty"`
	Required        bool        `json:"required,omitempty"`
	Nullable        bool        `json:"nullable,omitempty"`
	RequiredItems   []string    `json:"requiredItems,omitempty"`
	Rules           string      `json:"rules,omitempty"`
	ColorFormat     ColorFormat `json:"colorFormat,omitempty"`
	Alpha           bool        `json:"alpha,omitempty"`
	Model           *Document   `json:"model,omitempty"`
}

// Render describes m for a frontend. Enumerators are resolved concurrently,
// each independently of the others.
func Render(ctx context.Context, m *Model, rc ResolveContext) (*Document, error) {
	g, gctx := errgroup.WithContext(ctx)

	doc := render(gctx, g, m, rc)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return doc, nil
}

func render(ctx context.Context, g *errgroup.Group, m *Model, rc ResolveContext) *Document {
	doc := &Document{
		Name:        m.Name,
		Title:       m.Title,
		Description: m.Description,
		Layout:      m.Layout,
		IsGroup:     m.IsGroup,
		Fields:      make([]*FieldDoc, len(m.Fields)),
	}

	for i, f := range m.Fields {
		fd := &FieldDoc{
			Name:            f.Name,
			Type:            f.Kind,
			Title:           f.Title,
			Description:     f.Description,
			Placeholder:     f.Placeholder,
			Widget:          f.Widget,
			Section:         f.Section,
			Scope:           f.Scopes(),
			Default:         f.Default,
			ConditionalEnum: f.ConditionalEnum,
			Required:        f.Required,
			Nullable:        f.Nullable,
			RequiredItems:   f.RequiredItems,
			Rules:           f.Rules,
			ColorFormat:     f.ColorFormat,
			Alpha:           f.Alpha,
		}

		if f.Model != nil {
			fd.Model = render(ctx, g, f.Model, rc)
		}

		switch {
		case f.Enum != nil:
			g.Go(func() error {
				items, err := Resolve(ctx, f.Enum, rc)
				if err != nil {
					return fmt.Errorf("resolve enum of %s.%s: %w", m.Name, f.Name, err)
				}

				fd.Enum = items

				return nil
			})
		case len(f.Options) > 0:
			fd.Enum = ItemsFromValues(f.Options)
		}

		doc.Fields[i] = fd
	}

	return doc
}

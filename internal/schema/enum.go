package schema

import (
	"context"
	"slices"
)

// Item is one allowed value of an enumerator with its display label.
type Item struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SettingsSource gives context-dependent resolvers access to the effective
// settings of the addon they belong to.
type SettingsSource interface {
	SettingsTree(ctx context.Context, projectName, variant string) (map[string]any, error)
}

// ResolveContext is what an enumerator may know about the form being rendered.
// Every member is optional.
type ResolveContext struct {
	Settings    SettingsSource
	ProjectName string
	Variant     string
}

// Resolver produces the ordered allowed values of a field.
type Resolver interface {
	Resolve(ctx context.Context, rc ResolveContext) ([]Item, error)
}

// Values is a static list of values labelled by themselves.
type Values []string

// Resolve implements Resolver.
func (v Values) Resolve(context.Context, ResolveContext) ([]Item, error) {
	out := make([]Item, len(v))
	for i, s := range v {
		out[i] = Item{Value: s, Label: s}
	}

	return out, nil
}

// Items is a static list of value/label pairs.
type Items []Item

// Resolve implements Resolver.
func (it Items) Resolve(context.Context, ResolveContext) ([]Item, error) {
	return slices.Clone(it), nil
}

// Func is a zero-argument synchronous resolver.
type Func func() []Item

// Resolve implements Resolver.
func (f Func) Resolve(context.Context, ResolveContext) ([]Item, error) {
	return f(), nil
}

// ContextFunc is a resolver that reads project or settings state.
// Implementations return an empty slice when the part of the context they
// need is missing.
type ContextFunc func(ctx context.Context, rc ResolveContext) ([]Item, error)

// Resolve implements Resolver.
func (f ContextFunc) Resolve(ctx context.Context, rc ResolveContext) ([]Item, error) {
	return f(ctx, rc)
}

// Resolve runs r and always returns a non-nil slice on success.
func Resolve(ctx context.Context, r Resolver, rc ResolveContext) ([]Item, error) {
	if r == nil {
		return []Item{}, nil
	}

	items, err := r.Resolve(ctx, rc)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []Item{}
	}

	return items, nil
}

// ItemsFromValues labels every value by itself.
func ItemsFromValues(values []string) []Item {
	out, _ := Values(values).Resolve(context.Background(), ResolveContext{})
	return out
}

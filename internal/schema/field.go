// Package schema declares addon settings models and validates value trees against them.
package schema

import "slices"

// Scope is a context a setting is rendered and applied in.
type Scope string

const (
	// ScopeStudio is the studio-wide context.
	ScopeStudio Scope = "studio"
	// ScopeProject is the per-project context.
	ScopeProject Scope = "project"
	// ScopeSite is the per-site (local machine) context.
	ScopeSite Scope = "site"
)

// DefaultScopes apply to every field that does not declare its own scope.
var DefaultScopes = []Scope{ScopeStudio, ScopeProject}

// AllScopes lists every known scope.
var AllScopes = []Scope{ScopeStudio, ScopeProject, ScopeSite}

// ParseScope returns the scope named s, or false if s is not a known scope.
func ParseScope(s string) (Scope, bool) {
	for _, scope := range AllScopes {
		if string(scope) == s {
			return scope, true
		}
	}

	return "", false
}

// Kind is the value type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindText    Kind = "text"
	KindInt     Kind = "integer"
	KindFloat   Kind = "number"
	KindBool    Kind = "boolean"
	KindStrings Kind = "strings"
	KindColor   Kind = "color"
	KindModel   Kind = "model"
	KindModels  Kind = "models"
)

// ColorFormat selects how a color field is stored.
type ColorFormat string

const (
	ColorHex   ColorFormat = "hex"
	ColorFloat ColorFormat = "float"
	ColorUint8 ColorFormat = "uint8"
)

// Layout controls how a model is laid out when it is an item of a list.
type Layout string

const (
	LayoutDefault  Layout = ""
	LayoutCompact  Layout = "compact"
	LayoutExpanded Layout = "expanded"
)

// Field declares one setting.
type Field struct {
	Name        string
	Kind        Kind
	Default     any
	Title       string
	Description string
	Placeholder string
	Widget      string
	Section     string

	// Scope nil means DefaultScopes, an empty non-nil slice hides the field.
	Scope []Scope

	// Enum feeds the frontend with the allowed values. It is not enforced.
	Enum Resolver
	// Options are enforced literal values.
	Options         []string
	ConditionalEnum bool

	// Model is the nested model of KindModel and the record model of KindModels.
	Model *Model

	// Rules are go-playground/validator tags applied to scalar values.
	Rules    string
	Required bool
	Nullable bool

	RequiredItems []string
	UniqueNames   bool

	ColorFormat ColorFormat
	Alpha       bool
}

// Scopes returns the effective scope set of the field.
func (f *Field) Scopes() []Scope {
	if f.Scope == nil {
		return DefaultScopes
	}

	return f.Scope
}

// InScope reports whether the field is applicable in scope.
func (f *Field) InScope(scope Scope) bool {
	return slices.Contains(f.Scopes(), scope)
}

// Model is an ordered set of fields, the Go form of a settings class.
type Model struct {
	Name        string
	Title       string
	Description string
	Layout      Layout
	IsGroup     bool
	Fields      []*Field
}

// NewModel creates a model from the fields in declaration order.
func NewModel(name string, fields ...*Field) *Model {
	return &Model{Name: name, Fields: fields}
}

// Field returns the field called name or nil.
func (m *Model) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Defaults builds the default value tree of the model.
func (m *Model) Defaults() map[string]any {
	out := make(map[string]any, len(m.Fields))

	for _, f := range m.Fields {
		switch {
		case f.Kind == KindModel && f.Model != nil && f.Default == nil:
			out[f.Name] = f.Model.Defaults()
		case f.Default == nil:
			out[f.Name] = zeroValue(f)
		default:
			out[f.Name] = deepCopy(f.Default)
		}
	}

	return out
}

func zeroValue(f *Field) any {
	if f.Nullable {
		return nil
	}

	switch f.Kind {
	case KindString, KindText:
		return ""
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	case KindColor:
		switch {
		case f.ColorFormat == ColorHex:
			return "#000000"
		case f.Alpha:
			return []any{0, 0, 0, 0}
		default:
			return []any{0, 0, 0}
		}
	default:
		return []any{}
	}
}

// Active returns the name of the sub-model selected by the conditional enum
// field switcher in tree. Every alternative stays present in the data, only
// the selected one is meaningful.
func (m *Model) Active(tree map[string]any, switcher string) (string, bool) {
	f := m.Field(switcher)
	if f == nil || !f.ConditionalEnum {
		return "", false
	}

	v, ok := tree[switcher].(string)
	if !ok || v == "" {
		return "", false
	}

	target := m.Field(v)
	if target == nil || target.Kind != KindModel {
		return "", false
	}

	return v, true
}

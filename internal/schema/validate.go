package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks tree against the model. tree is an override tree: absent
// keys keep their defaults. When scope is not empty every key set outside of
// records must belong to a field applicable in that scope. Records (items of
// a records list) are complete values, their required fields must be present
// and their names unique after normalization. tree is never modified.
func (m *Model) Validate(tree map[string]any, scope Scope) error {
	w := walker{scope: scope}
	w.model(m, tree, "", false)

	return w.errs.orNil()
}

type walker struct {
	scope Scope
	errs  Errors
}

func (w *walker) fail(path string, err error, detail string) {
	w.errs = append(w.errs, &FieldError{Path: path, Err: err, Detail: detail})
}

func (w *walker) model(m *Model, tree map[string]any, prefix string, record bool) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if m.Field(k) == nil {
			w.fail(joinPath(prefix, k), ErrUnknownField, "")
		}
	}

	for _, f := range m.Fields {
		path := joinPath(prefix, f.Name)

		v, present := tree[f.Name]
		if !present {
			if record && f.Required {
				w.fail(path, ErrRequired, "")
			}

			continue
		}

		if !record && w.scope != "" && !f.InScope(w.scope) {
			w.fail(path, ErrOutOfScope, string(w.scope))
			continue
		}

		w.value(f, v, path, record)
	}
}

func (w *walker) value(f *Field, v any, path string, record bool) { //nolint:gocyclo
	if v == nil {
		if !f.Nullable {
			w.fail(path, ErrType, "null")
		}

		return
	}

	switch f.Kind {
	case KindString, KindText:
		s, ok := v.(string)
		if !ok {
			w.fail(path, ErrType, "expected string")
			return
		}

		if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			w.fail(path, ErrNotAllowed, s)
			return
		}

		w.rules(f, s, path)
	case KindInt:
		n, ok := asInt(v)
		if !ok {
			w.fail(path, ErrType, "expected integer")
			return
		}

		w.rules(f, n, path)
	case KindFloat:
		n, ok := asFloat(v)
		if !ok {
			w.fail(path, ErrType, "expected number")
			return
		}

		w.rules(f, n, path)
	case KindBool:
		if _, ok := v.(bool); !ok {
			w.fail(path, ErrType, "expected boolean")
		}
	case KindStrings:
		items, ok := asList(v)
		if !ok {
			w.fail(path, ErrType, "expected list of strings")
			return
		}

		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				w.fail(indexPath(path, i), ErrType, "expected string")
				continue
			}

			if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
				w.fail(indexPath(path, i), ErrNotAllowed, s)
			}
		}
	case KindColor:
		w.color(f, v, path)
	case KindModel:
		sub, ok := v.(map[string]any)
		if !ok {
			w.fail(path, ErrType, "expected object")
			return
		}

		w.model(f.Model, sub, path, record)
	case KindModels:
		w.records(f, v, path)
	}
}

func (w *walker) records(f *Field, v any, path string) {
	items, ok := asList(v)
	if !ok {
		w.fail(path, ErrType, "expected list of objects")
		return
	}

	records := make([]map[string]any, 0, len(items))

	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			w.fail(indexPath(path, i), ErrType, "expected object")
			continue
		}

		w.model(f.Model, rec, indexPath(path, i), true)
		records = append(records, rec)
	}

	if f.UniqueNames {
		if err := EnsureUniqueNames(path, records); err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				w.errs = append(w.errs, fe)
			}

			return
		}
	}

	for _, required := range f.RequiredItems {
		found := false

		for _, rec := range records {
			raw, _ := rec["name"].(string)
			if name, err := NormalizeName(raw); err == nil && name == required {
				found = true
				break
			}
		}

		if !found {
			w.errs = append(w.errs, &FieldError{Path: path, Name: required, Err: ErrMissingItem})
		}
	}
}

func (w *walker) color(f *Field, v any, path string) {
	if f.ColorFormat == ColorHex {
		s, ok := v.(string)
		if !ok {
			w.fail(path, ErrType, "expected hex color")
			return
		}

		if err := validate.Var(s, "hexcolor"); err != nil || !hexLenFits(len(s), f.Alpha) {
			w.fail(path, ErrConstraint, s)
		}

		return
	}

	items, ok := asList(v)

	want := 3
	if f.Alpha {
		want = 4
	}

	if !ok || len(items) != want {
		w.fail(path, ErrType, fmt.Sprintf("expected %d color components", want))
		return
	}

	for i, item := range items {
		switch f.ColorFormat {
		case ColorUint8:
			n, ok := asInt(item)
			if !ok || n < 0 || n > 255 {
				w.fail(indexPath(path, i), ErrConstraint, "expected 0-255")
			}
		default:
			n, ok := asFloat(item)
			if !ok || n < 0 || n > 1 {
				w.fail(indexPath(path, i), ErrConstraint, "expected 0-1")
			}
		}
	}
}

func (w *walker) rules(f *Field, v any, path string) {
	if f.Rules == "" {
		return
	}

	if err := validate.Var(v, f.Rules); err != nil {
		detail := f.Rules

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			detail = verrs[0].Tag()
			if p := verrs[0].Param(); p != "" {
				detail += "=" + p
			}
		}

		w.fail(path, ErrConstraint, detail)
	}
}

// hexLenFits reports whether a "#rgb"/"#rrggbb" or, with alpha,
// "#rgba"/"#rrggbbaa" string has the right length.
func hexLenFits(n int, alpha bool) bool {
	if alpha {
		return n == 5 || n == 9
	}

	return n == 4 || n == 7
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}

		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string, []map[string]any, []int, []float64:
		out, ok := deepCopy(l).([]any)
		if ok {
			return out, true
		}

		return toAnySlice(l), true
	default:
		return nil, false
	}
}

func toAnySlice(v any) []any {
	switch l := v.(type) {
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}

		return out
	case []float64:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}

		return out
	default:
		return nil
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

package schema

// Merge returns base with every override applied in order. Maps merge key by
// key, every other value (lists included) is replaced. Inputs are not modified.
func Merge(base map[string]any, overrides ...map[string]any) map[string]any {
	out, _ := deepCopy(base).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	for _, o := range overrides {
		mergeInto(out, o)
	}

	return out
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)

		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}

		dst[k] = deepCopy(v)
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}

		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}

		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}

		return out
	default:
		return v
	}
}

// Normalize returns a copy of tree where the name of every record found in a
// records list is replaced by its normalized form.
func (m *Model) Normalize(tree map[string]any) (map[string]any, error) {
	out, _ := deepCopy(tree).(map[string]any)
	if out == nil {
		return map[string]any{}, nil
	}

	if err := m.normalizeNames(out, ""); err != nil {
		return nil, err
	}

	return out, nil
}

func (m *Model) normalizeNames(tree map[string]any, prefix string) error {
	for _, f := range m.Fields {
		if f.Model == nil {
			continue
		}

		path := joinPath(prefix, f.Name)

		switch f.Kind {
		case KindModel:
			if sub, ok := tree[f.Name].(map[string]any); ok {
				if err := f.Model.normalizeNames(sub, path); err != nil {
					return err
				}
			}
		case KindModels:
			items, _ := tree[f.Name].([]any)
			for i, item := range items {
				rec, ok := item.(map[string]any)
				if !ok {
					continue
				}

				if raw, ok := rec["name"].(string); ok && f.Model.Field("name") != nil {
					name, err := NormalizeName(raw)
					if err != nil {
						return &FieldError{Path: indexPath(path, i) + ".name", Name: raw, Err: ErrInvalidName}
					}

					rec["name"] = name
				}

				if err := f.Model.normalizeNames(rec, indexPath(path, i)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// NormalizeName turns a record name into its comparison key.
// The result is stable: NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(name string) (string, error) {
	s := strings.TrimSpace(norm.NFKC.String(name))
	if s == "" {
		return "", ErrInvalidName
	}

	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), "_")
	s = cases.Fold().String(s) // a Caser is stateful, never share it

	if !namePattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q contains characters outside [a-z0-9_.-]", ErrInvalidName, name)
	}

	return s, nil
}

// EnsureUniqueNames checks that the records of the list field carry unique
// names after normalization. The first failure is returned.
func EnsureUniqueNames(field string, records []map[string]any) error {
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		raw, _ := rec["name"].(string)

		name, err := NormalizeName(raw)
		if err != nil {
			return &FieldError{
				Path:   fmt.Sprintf("%s[%d].name", field, i),
				Name:   raw,
				Err:    ErrInvalidName,
				Detail: err.Error(),
			}
		}

		if _, dup := seen[name]; dup {
			return &FieldError{Path: field, Name: name, Err: ErrDuplicateName}
		}

		seen[name] = struct{}{}
	}

	return nil
}

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"planpro/internal/validation"
)

// Validate checks an attribute mapping against the given field definitions.
// It runs per-field in registry order and never fails fast: every violation
// is collected so the caller can report all problems at once. Attribute keys
// with no live definition are tolerated as legacy data.
func Validate(fields []FieldDefinition, attrs map[string]json.RawMessage) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	for _, f := range fields {
		raw, present := attrs[f.Name]
		if !present || isNull(raw) {
			if f.Required {
				ve.Add(f.Name, "is required")
			}
			continue
		}
		empty, err := checkShape(f, raw)
		if err != nil {
			ve.Add(f.Name, err.Error())
			continue
		}
		if f.Required && empty {
			ve.Add(f.Name, "is required")
		}
	}
	return ve
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// checkShape decodes raw according to the field's declared type and reports
// whether the decoded value is empty.
func checkShape(f FieldDefinition, raw json.RawMessage) (empty bool, err error) {
	switch f.Type {
	case TypeText, TypeLongText, TypeDate, TypeImage:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, fmt.Errorf("must be a string")
		}
		return strings.TrimSpace(s) == "", nil
	case TypeSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, fmt.Errorf("must be a string")
		}
		if s != "" && len(f.Options) > 0 && !contains(f.Options, s) {
			return false, fmt.Errorf("must be one of: %s", strings.Join(f.Options, ", "))
		}
		return s == "", nil
	case TypeNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return false, fmt.Errorf("must be a number")
		}
		return false, nil
	case TypeList:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return false, fmt.Errorf("must be a list of strings")
		}
		return nonBlank(items) == 0, nil
	case TypeFAQ:
		var items []FAQEntry
		if err := json.Unmarshal(raw, &items); err != nil {
			return false, fmt.Errorf("must be a list of question/answer pairs")
		}
		return len(items) == 0, nil
	case TypeRecommendation:
		var items []Recommendation
		if err := json.Unmarshal(raw, &items); err != nil {
			return false, fmt.Errorf("must be a list of name/url/reason entries")
		}
		return len(items) == 0, nil
	}
	// Unknown declared type: tolerate the value, it round-trips unchanged.
	return false, nil
}

func nonBlank(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateDefinition checks a field definition before it enters the
// registry, collecting every problem.
func ValidateDefinition(def FieldDefinition) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "name", def.Name)
	validation.RequireField(ve, "label", def.Label)
	valid := false
	for _, t := range ValidFieldTypes {
		if def.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		ve.Add("type", "must be a recognized field type")
	}
	if def.Type == TypeSelect && len(def.Options) == 0 {
		ve.Add("options", "is required for SELECT fields")
	}
	return ve
}

package project

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultIgnore is used when the project file has no ignore key.
var DefaultIgnore = []string{"WS", "COMMENT"}

func ApplyDefaults(p *Project) {
	if p.Ignore == nil {
		p.Ignore = append([]string(nil), DefaultIgnore...)
	}
}

// FieldError is a validation failure of one project field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError of a project.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("project validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "project validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks required fields, source patterns and conflicting skip
// policies. All problems are reported together.
func Validate(p *Project) error {
	var errs []FieldError

	if p.Grammar == "" {
		errs = append(errs, FieldError{Field: "grammar", Message: "grammar file is required"})
	}
	if p.Start == "" {
		errs = append(errs, FieldError{Field: "start", Message: "start production is required"})
	}
	for i, pattern := range p.Sources {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("sources[%d]", i),
				Message: fmt.Sprintf("invalid pattern %q", pattern),
			})
		}
	}

	skipped := make(map[string]bool, len(p.Skip))
	for _, name := range p.Skip {
		skipped[name] = true
	}
	for _, name := range p.SkipIfOneChild {
		if skipped[name] {
			errs = append(errs, FieldError{
				Field:   "skip_if_one_child",
				Message: fmt.Sprintf("rule %s is already listed in skip", name),
			})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

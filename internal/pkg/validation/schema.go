package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidDocument = errors.New("document failed validation")

// Error lists every schema violation found in a document.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidDocument
}

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompile panics on an invalid schema; schemas are package constants.
func MustCompile(schema map[string]interface{}) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return &Schema{schema: s}
}

// ValidateJSON checks a raw request body.
func (s *Schema) ValidateJSON(body []byte) error {
	if len(body) == 0 {
		return &Error{Violations: []string{"(root): body is required"}}
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &Error{Violations: []string{err.Error()}}
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return &Error{Violations: errs}
	}
	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

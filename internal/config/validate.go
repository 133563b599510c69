package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// ValidationError lists every schema violation found in a config, one
// "field: description" entry each, sorted.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config schema validation failed: " + strings.Join(e.Problems, "; ")
}

// ValidateSettings checks raw settings, as produced by viper, against the
// embedded schema.
func ValidateSettings(settings map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load config schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(settings))
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.Field()+": "+e.Description())
	}
	sort.Strings(problems)
	return &ValidationError{Problems: problems}
}

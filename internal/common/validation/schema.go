// Package validation wraps JSON schema checks for untrusted documents,
// primarily the AI classifier output.
package validation

import (
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateJSON validates a raw JSON document against a JSON schema.
func ValidateJSON(schemaJSON string, document []byte) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &ValidationResult{Valid: false, Errors: errs}, nil
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	phonePattern := regexp.MustCompile(`^\+?[\d\s\-\(\)]{6,}$`)
	return phonePattern.MatchString(phone)
}

// ValidateLanguageCode checks a lowercase two-letter language code.
func ValidateLanguageCode(code string) bool {
	langPattern := regexp.MustCompile(`^[a-z]{2}$`)
	return langPattern.MatchString(code)
}

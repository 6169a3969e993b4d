// Package validation holds the shared validator instance and the
// custom rules for dashboard enums.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

// RunTypeNames are the run-type labels an activity may be tagged with.
// They mirror the picker the frontend shows.
var RunTypeNames = []string{
	"Easy Standard Run",
	"Easy Long Run",
	"Tempo Run",
	"Interval Run",
	"Progressive Run",
	"Mixed/Hybrid",
}

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("run_type", validateRunType); err != nil {
		panic(fmt.Sprintf("failed to register run_type validator: %v", err))
	}
}

// validateRunType accepts any known run-type label.
func validateRunType(fl validator.FieldLevel) bool {
	return IsRunType(fl.Field().String())
}

// IsRunType reports whether value is a known run-type label.
func IsRunType(value string) bool {
	for _, name := range RunTypeNames {
		if value == name {
			return true
		}
	}
	return false
}

// ValidateRunType validates a run-type label. Empty clears the tag and
// is always allowed.
func ValidateRunType(value string) error {
	if value == "" || IsRunType(value) {
		return nil
	}
	return fmt.Errorf("invalid runType: %s (must be one of %s)",
		value, strings.Join(RunTypeNames, ", "))
}

// SanitizeText trims whitespace and strips control characters except
// newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

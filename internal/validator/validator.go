// Package validator builds the request validator shared by all handlers.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom rules registered. Handlers and
// tests must use this instead of validator.New so the rule set stays
// consistent.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings. "required" alone lets
	// "   " through, which is useless as an award reason or product name.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	return v
}

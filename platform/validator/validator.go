// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// placaPattern accepts Mexican-style plates: 5 to 10 alphanumeric characters
// with optional dashes, e.g. "ABC123" or "ABC-12-34".
var placaPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{3,9}$`)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the domain validations registered.
func New() *Validator {
	v := validator.New()

	// placa: vehicle plate format
	_ = v.RegisterValidation("placa", func(fl validator.FieldLevel) bool {
		return placaPattern.MatchString(fl.Field().String())
	})

	// anio: plausible vehicle model year
	_ = v.RegisterValidation("anio", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 1900 && year <= int64(time.Now().Year())+1
	})

	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

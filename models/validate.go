package models

import (
	"github.com/go-playground/validator/v10"
)

// shared validator; validator.Validate caches struct metadata and is safe for concurrent use
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a carrier payload against its struct tags.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

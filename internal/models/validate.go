package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NewValidator returns a validator that understands the schema tags used by
// the models in this package, including "emailaddr".
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

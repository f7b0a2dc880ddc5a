package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Medical registration numbers: three letters then ten digits.
var registrationNumberPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{10}$`)

// RegisterValidators installs the custom binding tags. Call once at startup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("ahpra", func(fl validator.FieldLevel) bool {
		return registrationNumberPattern.MatchString(fl.Field().String())
	})
}

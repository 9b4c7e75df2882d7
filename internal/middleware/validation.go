package middleware

import (
	"reflect"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs custom binding validations on gin's validator
// engine. Call once at startup before routes are served.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// handlebars rejects sources that do not parse, so broken templates fail
	// at bind time with a field-level error.
	_ = v.RegisterValidation("handlebars", func(fl validator.FieldLevel) bool {
		_, err := raymond.Parse(fl.Field().String())
		return err == nil
	})

	// Error messages report json field names rather than Go struct fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

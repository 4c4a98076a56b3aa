package atelier

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return contains(BlogCategories, fl.Field().String())
	})
	v.RegisterValidation("icon", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || contains(ServiceIcons, s)
	})
	return v
}

// echoValidator adapts validator to echo.Validator so handlers can call
// c.Validate.
type echoValidator struct {
	v *validator.Validate
}

func (ev *echoValidator) Validate(i interface{}) error {
	if err := ev.v.Struct(i); err != nil {
		return fromValidator(err)
	}
	return nil
}

package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate = New()

// New returns a validator with the coordinate tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterCustomValidations(v)
	return v
}

func RegisterCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("lat", validateLat)
	_ = v.RegisterValidation("lng", validateLng)
}

// RegisterGin installs the coordinate tags on gin's binding engine so that
// `binding:"lat"` works in request structs.
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidations(v)
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180 && lng <= 180
}

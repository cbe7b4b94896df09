package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shubham-ralli/form-b/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("elementtype", func(fl validator.FieldLevel) bool {
		return models.ElementType(fl.Field().String()).Known()
	})
	return v
}

// check validates s and turns the first failure into an ErrInvalid.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fail(ErrInvalid, err.Error())
	}
	return fail(ErrInvalid, message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email"
	case "min":
		if field == "password" {
			return "Password must be at least 6 characters"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "elementtype":
		return fmt.Sprintf("unknown element type %q", fe.Value())
	}
	return fmt.Sprintf("%s is invalid", field)
}

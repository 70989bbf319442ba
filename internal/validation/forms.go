package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the sign-up form. Avatar is optional.
type RegisterForm struct {
	Name            string  `form:"name" validate:"required"`
	Email           string  `form:"email" validate:"required,email"`
	Password        string  `form:"password" validate:"required,min=6"`
	ConfirmPassword string  `form:"confirmPassword" validate:"required,eqfield=Password"`
	Avatar          *Upload `form:"avatar" validate:"-"`
}

// Struct validates a tagged form and converts failures into field errors.
func Struct(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), strings.ToUpper(fe.Tag()), messageFor(fe))
	}
	return v.Err()
}

// ValidateLogin checks the sign-in form.
func ValidateLogin(form LoginForm) error {
	return Struct(form)
}

// ValidateRegister checks the sign-up form including the avatar type.
func ValidateRegister(form RegisterForm) error {
	v := New()
	v.Merge(Struct(form))
	v.Merge(ValidateImage("avatar", form.Avatar))
	return v.Err()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return "is invalid"
	}
}

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of in and converts failures into
// a Validation error.  Non-validation errors are returned as Internal.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Internal("validation failed", err)
	}
	fields := FieldErrors{}
	for _, fe := range ves {
		fields.Add(fe.Field(), fieldMessage(fe))
	}
	return Validation("The given data was invalid.", fields)
}

func fieldMessage(fe validator.FieldError) string {
	f := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", f)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", f, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", f, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s.", f, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", f)
	default:
		return fmt.Sprintf("The %s field is invalid.", f)
	}
}

// merge folds the field errors of err (a Validation *Error) into dst.
func merge(dst FieldErrors, err error) error {
	var se *Error
	if errors.As(err, &se) && se.Kind == KindValidation {
		for k, msgs := range se.Fields {
			dst[k] = append(dst[k], msgs...)
		}
		return nil
	}
	return err
}

package transport

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/bizdesk/domain"
)

// Validator wraps the go-playground validator with the form rules.
type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation("business_type", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, t := range domain.BusinessTypes {
			if value == t {
				return true
			}
		}
		return false
	})

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: validate}
}

// Validate checks a request struct and returns a *ValidationError listing
// each failing field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	return NewValidationError(errs)
}

// ValidationError maps field names to messages.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.Errors[field])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s characters long", field, err.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters long", field, err.Param())
		case "business_type":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, strings.Join(domain.BusinessTypes, ", "))
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &ValidationError{Errors: out}
}

// Package validation wraps go-playground/validator with the field error
// shape returned to API clients.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "taskhire/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError converts the errors into a 400 carrying them as details.
func (v ValidationErrors) AppError(message string) *apperrors.AppError {
	fields := make([]map[string]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, map[string]string{"field": e.Field, "message": e.Message})
	}
	return apperrors.Validation(message, map[string]any{"fields": fields})
}

func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// Validator reports field names by their JSON tag so messages match the
// request body the client sent.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s. Non-field failures are returned unchanged.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

// Var validates a single value against tag, reporting it under field.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			errs := translate(validationErrs)
			for i := range errs {
				errs[i].Field = field
				errs[i].Message = strings.Replace(errs[i].Message, "value", field, 1)
			}
			return errs
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		if field == "" {
			field = "value"
		}
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a time in HH:MM format", field)
		case "url", "http_url":
			message = fmt.Sprintf("%s must be an absolute URL", field)
		}

		out = append(out, ValidationError{Field: namespaceField(err), Message: message})
	}

	return out
}

// namespaceField drops the root struct name so nested errors read
// "attachments[0].url" rather than "DisputeInput.attachments[0].url".
func namespaceField(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	if err.Field() == "" {
		return "value"
	}
	return err.Field()
}

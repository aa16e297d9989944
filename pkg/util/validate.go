package util

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs struct tag validation and reports failures as a
// ValidationError whose details map each JSON field name to the failed rule.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewInternalError(err)
	}
	fields := make(map[string]any, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return NewValidationError("invalid fields: "+strings.Join(names, ", "), map[string]any{"fields": fields})
}

// FieldErrors extracts the per-field rule map from a ValidationError.
func FieldErrors(err error) map[string]any {
	var de *DomainError
	if !errors.As(err, &de) || de.Details == nil {
		return nil
	}
	fields, _ := de.Details["fields"].(map[string]any)
	return fields
}

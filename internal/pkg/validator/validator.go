// Package validator wraps go-playground struct validation and reports
// failures as a field->tag map, the shape the error envelope's details
// field expects.
package validator

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate returns field->tag for every failed rule, nil when the struct
// passes.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

package api

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/warrantydesk/warrantydesk/internal/validation"
)

var validate = validation.New()

// Validate checks a decoded request body against its validate tags and
// returns JSON path -> message, or nil when the body is valid. Nested
// fields are reported by full path, e.g. "items[0].sku".
func Validate(body interface{}) map[string]string {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[validation.FieldPath(fe)] = validation.Message(fe)
	}
	return details
}

package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// bindingMessage turns a binding error into a JSON error body value:
// a field -> message map for validation failures, the error text otherwise.
func bindingMessage(err error) interface{} {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			switch fe.Tag() {
			case "required":
				fields[fe.Field()] = "this field is required"
			case "datetime":
				fields[fe.Field()] = "must be a date formatted YYYY-MM-DD"
			default:
				fields[fe.Field()] = "invalid value"
			}
		}
		return fields
	}
	return "Invalid request body: " + err.Error()
}

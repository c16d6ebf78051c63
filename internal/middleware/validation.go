package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodeAndValidate decodes a JSON request body into v and checks its
// validate tags. Unknown fields are rejected so typos surface as 400s
// instead of silently defaulting.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// ValidationError is one field failure, formatted for the client.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to client-facing messages.
func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			out = append(out, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Message: fieldMessage(e),
			})
		}
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s is too long", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package validation

import (
	"net/http"
	"strings"
)

// Error is a client input error. It always maps to 400 Bad Request.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) StatusCode() int {
	return http.StatusBadRequest
}

// Required returns a validation error for field.
func Required(field string) *Error {
	return &Error{Field: field, Message: field + " is required"}
}

// RequiredString checks that v is a non-blank string and returns it trimmed.
// v comes from a decoded JSON body, so numbers, bools, objects and nil are all rejected.
func RequiredString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Required(field)
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", Required(field)
	}

	return trimmed, nil
}

package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
	HTTPStatus int                 `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%d: %s", e.HTTPStatus, e.Message)
}

func New(status int, message string) *APIError {
	return &APIError{HTTPStatus: status, Message: message}
}

// Validation builds a 422 with a field-keyed error map.
func Validation(errors map[string][]string) *APIError {
	return &APIError{
		HTTPStatus: http.StatusUnprocessableEntity,
		Message:    "The given data was invalid.",
		Errors:     errors,
	}
}

// InvalidCredentials is the single login failure shape. Lookup and password
// failures must be indistinguishable to the caller.
func InvalidCredentials() *APIError {
	return Validation(map[string][]string{"email": {"Invalid credentials"}})
}

func Unauthorized() *APIError {
	return New(http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(message string) *APIError {
	return New(http.StatusForbidden, message)
}

// Conflict builds a 409 naming the conflicting unique field.
func Conflict(field string) *APIError {
	message := fmt.Sprintf("%s already exists", field)
	return &APIError{
		HTTPStatus: http.StatusConflict,
		Message:    message,
		Errors:     map[string][]string{field: {message}},
	}
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func BadRequest(message string) *APIError {
	return New(http.StatusBadRequest, message)
}

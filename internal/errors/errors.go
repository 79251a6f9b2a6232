package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFound covers absent forums, messages, polls, option indexes and
// stored attachments.
var NotFound = errors.New("Not found")

// PermissionDenied is returned when the acting user lacks the required
// capability (delete someone else's message, read a private forum, ...).
var PermissionDenied = errors.New("Permission denied")

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

// StatusCode maps an error to the HTTP status the API responds with.
func StatusCode(err error) int {
	var withStatus *ErrorWithStatusCode
	switch {
	case errors.As(err, &withStatus):
		return withStatus.StatusCode
	case errors.Is(err, NotFound):
		return http.StatusNotFound
	case errors.Is(err, PermissionDenied):
		return http.StatusForbidden
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

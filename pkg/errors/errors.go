package errors

import (
	"errors"
	"fmt"
)

const DefaultMessage = "An error occurred"

var (
	ErrTransport            = errors.New("transport failure")
	ErrDecode               = errors.New("failed to decode response")
	ErrEmptyID              = errors.New("empty task id")
	ErrNoCurrentTask        = errors.New("no current task")
	ErrTaskInProgress       = errors.New("analysis cannot be started while a task is loading or running")
	ErrInvalidRepositoryURL = errors.New("invalid GitHub repository URL")
	ErrMissingColumn        = errors.New("missing required CSV column")
)

// APIError is returned when the API answers with an unexpected status code.
// Message holds the server supplied `detail` or `message`, or DefaultMessage.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Status returns the HTTP status of err if it wraps an APIError, 0 otherwise.
func Status(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// Message returns the human readable text surfaced to users for err.
// Transport and decode failures keep their fallback prefix.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	if fallback == "" {
		return err.Error()
	}

	return fmt.Sprintf("%s: %s", fallback, err.Error())
}

package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents connection and timeout failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassClient represents non-2xx responses below 500.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassDecode represents malformed JSON or a document missing expected fields.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError represents a failed API call with additional context.
type APIError struct {
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var msg string
	switch e.ErrorClass {
	case ErrorClassClient, ErrorClassServer:
		msg = fmt.Sprintf("GET %s: %s error (status %d): %s", e.URL, e.ErrorClass, e.StatusCode, e.Message)
	default:
		msg = fmt.Sprintf("GET %s: %s error: %s", e.URL, e.ErrorClass, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewDecodeError builds a decode-class error for a document fetched from url.
func NewDecodeError(url, message string, err error) *APIError {
	return &APIError{
		URL:        url,
		ErrorClass: ErrorClassDecode,
		Message:    message,
		Err:        err,
	}
}

// ClassOf returns the error class of the first APIError in err's chain.
func ClassOf(err error) (ErrorClass, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass, true
	}
	return "", false
}

// IsNetworkError reports whether err is a connection or timeout failure.
func IsNetworkError(err error) bool {
	class, ok := ClassOf(err)
	return ok && class == ErrorClassNetwork
}

// IsHTTPStatusError reports whether err is a non-2xx response.
func IsHTTPStatusError(err error) bool {
	class, ok := ClassOf(err)
	return ok && (class == ErrorClassClient || class == ErrorClassServer)
}

// IsDecodeError reports whether err is a malformed or unexpected JSON document.
func IsDecodeError(err error) bool {
	class, ok := ClassOf(err)
	return ok && class == ErrorClassDecode
}

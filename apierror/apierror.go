// Package apierror normalizes failures of remote API calls into a single error type with a
// stable code, so callers can branch on the kind of failure instead of on transport details.
package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type Code string

const (
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeTimeout      Code = "TIMEOUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeConflict     Code = "CONFLICT"
	CodeServer       Code = "SERVER_ERROR"
	CodeUnknown      Code = "UNKNOWN"
)

// DefaultMessages are shown when the server did not send a message of its own.
var DefaultMessages = map[Code]string{
	CodeNetwork:      "check your network connection",
	CodeTimeout:      "the request timed out, please try again",
	CodeUnauthorized: "login required",
	CodeForbidden:    "access denied",
	CodeNotFound:     "the requested resource was not found",
	CodeValidation:   "please check the submitted information",
	CodeConflict:     "the resource already exists",
	CodeServer:       "server error, please try again later",
	CodeUnknown:      "an unknown error occurred",
}

// Error is a normalized API failure. Status is 0 when no response was received.
type Error struct {
	Code            Code
	Status          int
	Message         string
	OriginalMessage string
	Details         map[string]any
	Err             error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether repeating the same call may succeed.
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case CodeNetwork, CodeTimeout, CodeServer:
		return true
	default:
		return false
	}
}

// CodeFromStatus maps an HTTP status onto an error code.
func CodeFromStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		if status >= 500 {
			return CodeServer
		}
		return CodeUnknown
	}
}

// FromResponse builds an Error from a non-2xx response. The server message is read from a JSON
// body's "message" or "error" field when present.
func FromResponse(status int, body []byte) *Error {
	code := CodeFromStatus(status)
	e := &Error{
		Code:    code,
		Status:  status,
		Message: DefaultMessages[code],
	}

	var details map[string]any
	if len(body) > 0 && json.Unmarshal(body, &details) == nil {
		e.Details = details
		if msg := stringField(details, "message"); msg != "" {
			e.OriginalMessage = msg
		} else if msg := stringField(details, "error"); msg != "" {
			e.OriginalMessage = msg
		}
		if e.OriginalMessage != "" {
			e.Message = e.OriginalMessage
		}
	}
	return e
}

// Normalize converts any error from a remote call into an *Error. Errors that already are (or wrap)
// an *Error are returned as that *Error.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: DefaultMessages[CodeTimeout], Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Code: CodeTimeout, Message: DefaultMessages[CodeTimeout], Err: err}
		}
		return &Error{Code: CodeNetwork, Message: DefaultMessages[CodeNetwork], Err: err}
	}

	return &Error{
		Code:            CodeUnknown,
		Message:         err.Error(),
		OriginalMessage: err.Error(),
		Err:             err,
	}
}

// IsCode reports whether err is an API error with the given code.
func IsCode(err error, code Code) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

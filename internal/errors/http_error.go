package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable marks transport failures talking to the parking service.
var ErrUnavailable = stderrors.New("parking service unavailable")

// ConnectivityMessage is what operators see for any ErrUnavailable.
const ConnectivityMessage = "Could not reach the parking service. Check your connection."

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrNotFound = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
	ErrConflict = func(msg string) *HTTPError { return NewHTTPError(http.StatusConflict, msg) }
)

type fieldError struct {
	Msg string `json:"msg"`
}

// FromResponse builds the error shown for a non-OK parking service response.
// A detail list has its messages joined with "; ", a detail string is kept
// verbatim, anything else becomes a generic status message.
func FromResponse(code int, body []byte) *HTTPError {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var single string
		if err := json.Unmarshal(envelope.Detail, &single); err == nil && single != "" {
			return NewHTTPError(code, single)
		}
		var list []fieldError
		if err := json.Unmarshal(envelope.Detail, &list); err == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, fe := range list {
				if fe.Msg != "" {
					msgs = append(msgs, fe.Msg)
				}
			}
			if len(msgs) > 0 {
				return NewHTTPError(code, strings.Join(msgs, "; "))
			}
		}
	}
	return NewHTTPError(code, fmt.Sprintf("Request failed with status %d.", code))
}

// Message returns the operator-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Message
	}
	if stderrors.Is(err, ErrUnavailable) {
		return ConnectivityMessage
	}
	return err.Error()
}

// StatusCode returns the code carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Code
	}
	return 0
}

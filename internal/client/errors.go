package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Error codes set on APIError by the client itself.
const (
	CodeRequestFailed = "REQUEST_FAILED"
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeAPI           = "API_ERROR"
	CodeRateLimited   = "RATE_LIMIT_EXCEEDED"
)

var ErrTokenRequired = errors.New("token required for websocket connection")

// APIError is a request the server refused, or one the client refused to
// send because of its own rate limit.
type APIError struct {
	Message   string
	Status    int
	Code      string
	Timestamp time.Time
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d, %s)", e.Message, e.Status, e.Code)
}

func newAPIError(msg string, status int, code string) *APIError {
	return &APIError{Message: msg, Status: status, Code: code, Timestamp: time.Now().UTC()}
}

// IsRateLimited reports whether err is a 429 from either side.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 429
}

type errorBody struct {
	Error   interface{} `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
}

// failure builds the APIError for a non-2xx response.
func failure(status int, body []byte) *APIError {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return newAPIError(fmt.Sprintf("HTTP %d", status), status, CodeRequestFailed)
	}

	msg := e.Message
	if msg == "" {
		if s, ok := e.Error.(string); ok {
			msg = s
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	code := e.Code
	if code == "" {
		code = CodeUnknown
	}
	return newAPIError(msg, status, code)
}

// embeddedError catches 2xx bodies that still carry a truthy "error".
func embeddedError(status int, body []byte) *APIError {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return nil
	}
	if !truthy(e.Error) {
		return nil
	}

	msg := e.Message
	if s, ok := e.Error.(string); ok && msg == "" {
		msg = s
	}
	if msg == "" {
		msg = "API error"
	}
	code := e.Code
	if code == "" {
		code = CodeAPI
	}
	return newAPIError(msg, status, code)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

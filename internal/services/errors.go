package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/tqlx/internal/shared"
)

const (
	// CodeTransport marks failures that happened before a response was received.
	CodeTransport = "transport"
	// CodeMalformedResponse marks 2xx responses whose body could not be decoded.
	CodeMalformedResponse = "malformed_response"

	maxErrorBodyLen = 512
)

// APIError is the normalized failure shape of every service call.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "unknown error"
	}
	return e.Message
}

// Unwrap exposes both [shared.ErrAPIRequest] and the underlying cause, if any.
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{shared.ErrAPIRequest, e.Err}
	}
	return []error{shared.ErrAPIRequest}
}

// newTransportError converts a failure that prevented a response into an [APIError].
//
// [url.Error] wrappers are peeled so the message names the cause rather than repeating the request URL.
func newTransportError(err error) *APIError {
	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		msg = urlErr.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	return &APIError{Message: msg, Code: CodeTransport, Err: err}
}

// errorBody covers the error payload shapes the service and its proxies are known to return.
type errorBody struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
	Status  json.RawMessage `json:"status"`
	Error   json.RawMessage `json:"error"`
}

// parseErrorResponse builds an [APIError] for a non-2xx response.
//
// The message is never empty: structured JSON first, then the raw body text, then the status line.
func parseErrorResponse(status int, statusLine string, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload errorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		apiErr.Code = rawScalar(payload.Code)
		if s, err := strconv.Atoi(rawScalar(payload.Status)); err == nil && s != 0 {
			apiErr.Status = s
		}
		if apiErr.Message == "" && len(payload.Error) > 0 {
			var nested errorBody
			if err := json.Unmarshal(payload.Error, &nested); err == nil {
				apiErr.Message = strings.TrimSpace(nested.Message)
				if apiErr.Code == "" {
					apiErr.Code = rawScalar(nested.Code)
				}
			} else {
				apiErr.Message = rawScalar(payload.Error)
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = truncate(strings.TrimSpace(string(body)), maxErrorBodyLen)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(statusLine)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", status)
	}

	return apiErr
}

// rawScalar renders a JSON string or number as plain text. Objects, arrays and null yield "".
func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

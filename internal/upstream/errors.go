package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNetwork marks fetch-level failures (connection refused, DNS, abort).
// Wrapped errors carry the underlying cause; check with errors.Is.
var ErrNetwork = errors.New("upstream network error")

// APIError is a non-2xx response from the ticketing API.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: %d %s", e.Status, e.Message)
}

// IsAuthFailure reports whether the error is an authentication failure.
func (e *APIError) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized
}

// extractMessage pulls a human-readable message out of an error response
// body. Conventional message-carrying fields are checked first; a textual
// body is used as-is; otherwise the status text is the fallback.
func extractMessage(body []byte, contentType string, status int) string {
	if isJSONContent(contentType) {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err == nil {
			for _, field := range []string{"message", "error", "detail"} {
				var msg string
				if raw, ok := payload[field]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
					return msg
				}
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func isJSONContent(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json") ||
		strings.Contains(contentType, "+json")
}

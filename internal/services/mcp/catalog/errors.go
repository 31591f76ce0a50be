package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse reports a 2xx body that does not have the documented shape.
var ErrMalformedResponse = errors.New("malformed catalog response")

// APIError is a non-2xx answer from the catalog API.
type APIError struct {
	StatusCode int
	// Message is the "error" string of the JSON error body, if the API sent one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("catalog api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return apiErr
	}
	var msg string
	if json.Unmarshal(envelope.Error, &msg) == nil {
		apiErr.Message = msg
	}
	return apiErr
}

// RemoteMessage returns the message the API attached to a failed call. It
// reports false for network errors, timeouts and error bodies without one.
func RemoteMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

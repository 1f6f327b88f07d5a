package records

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidKey is returned before any I/O when a key is empty.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrInvalidRecord is returned before any I/O when a record is nil.
	ErrInvalidRecord = errors.New("record is invalid")

	// ErrTransport wraps failures to reach the remote (dial, DNS, timeout, cancellation).
	ErrTransport = errors.New("record transport failed")

	// ErrUnexpectedStatus means the remote answered with a non-success status.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrNotFound means the remote answered 404 for the addressed key.
	ErrNotFound = errors.New("record not found")

	// ErrMalformedResponse means a success response could not be interpreted.
	ErrMalformedResponse = errors.New("malformed response body")
)

const bodySnippetLimit = 512

// StatusError reports a non-success HTTP status from the remote.
type StatusError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func newStatusError(op, method, url string, status int, body []byte) *StatusError {
	return &StatusError{
		Op:         op,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       readBodySnippet(body),
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %s %s: http response status %d", e.Op, e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap lets callers match ErrNotFound for 404 and ErrUnexpectedStatus otherwise.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrUnexpectedStatus
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > bodySnippetLimit {
		body = body[:bodySnippetLimit]
	}
	return strings.TrimSpace(string(body))
}

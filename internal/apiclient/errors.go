package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a response outside 2xx. Body is kept verbatim.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	const max = 256
	body := string(e.Body)
	if len(body) > max {
		body = body[:max] + "..."
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), body)
}

// TransportError means no HTTP response was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusOf extracts the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status, true
	}
	return 0, false
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	s, ok := StatusOf(err)
	return ok && s == status
}

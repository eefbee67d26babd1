package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable: no response was received (connection refused, DNS,
	// per-attempt timeout).
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized: the server answered 401; the session has been cleared.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServer: a 5xx response.
	ErrServer = errors.New("server error")
	// ErrClient: a 4xx response other than 401.
	ErrClient = errors.New("client error")
	// ErrNotAuthenticated: a protected call was made with no stored token.
	// Nothing was sent.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMalformedResponse: a 2xx body that failed to decode or validate.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError carries a non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrServer:
		return e.StatusCode >= 500 && e.StatusCode < 600
	case ErrClient:
		return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusUnauthorized
	}
	return false
}

// NetworkError wraps a failure where no response arrived.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// StatusCode extracts the HTTP status from err, or 0 when there is none.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
)

var (
	// ErrNotFound is returned for 404 responses and for bindings that
	// could not be located. errdefs.IsNotFound reports true for both.
	ErrNotFound = errdefs.ErrNotFound

	ErrMultipleMatchingBindings = errors.New("cannot delete a binding: multiple matching bindings were found, provide additional properties")
	ErrMalformedResponse        = errors.New("malformed API response")
)

// ErrorDetails is the body of a failed API response.
//
//easyjson:json
type ErrorDetails struct {
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ResponseError is a non-2xx API response. It unwraps to the errdefs class
// of its status code, so errdefs.IsNotFound, errdefs.IsConflict and friends
// work on it.
type ResponseError struct {
	StatusCode int
	URL        string
	Body       string
	Details    ErrorDetails
}

func (e *ResponseError) Error() string {
	kind := "client"
	if e.IsServerError() {
		kind = "server"
	}
	msg := fmt.Sprintf("API responded with a %s error: status code of %d", kind, e.StatusCode)
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	switch {
	case e.Details.Reason != "":
		msg += ": " + e.Details.Reason
	case e.Details.Error != "":
		msg += ": " + e.Details.Error
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return errorClassOf(e.StatusCode)
}

func (e *ResponseError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func (e *ResponseError) IsServerError() bool {
	return e.StatusCode >= 500
}

func errorClassOf(status int) error {
	switch status {
	case http.StatusBadRequest:
		return errdefs.ErrInvalidArgument
	case http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case http.StatusNotFound:
		return errdefs.ErrNotFound
	case http.StatusConflict:
		return errdefs.ErrConflict
	case http.StatusPreconditionFailed:
		return errdefs.ErrFailedPrecondition
	case http.StatusTooManyRequests:
		return errdefs.ErrResourceExhausted
	case http.StatusNotImplemented:
		return errdefs.ErrNotImplemented
	case http.StatusServiceUnavailable:
		return errdefs.ErrUnavailable
	}
	if status >= 500 {
		return errdefs.ErrInternal
	}
	return errdefs.ErrUnknown
}

// IsClientError reports whether err is a 4xx API response.
func IsClientError(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.IsClientError()
}

// IsServerError reports whether err is a 5xx API response.
func IsServerError(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.IsServerError()
}

// RequestError is a request that never produced a response: connection
// refused, TLS handshake failures, timeouts.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("error during %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// HealthCheckFailedError is returned by health checks the node reported
// as failed with a 503 response.
type HealthCheckFailedError struct {
	Path       string
	StatusCode int
	Details    HealthCheckFailureDetails
}

func (e *HealthCheckFailedError) Error() string {
	if e.Details.Reason == "" {
		return "health check " + e.Path + " failed"
	}
	return "health check " + e.Path + " failed: " + e.Details.Reason
}

func (e *HealthCheckFailedError) Unwrap() error {
	return errdefs.ErrUnavailable
}

// requireName rejects blank resource names before a request is made, an
// empty path segment would address a different endpoint.
func requireName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return errdefs.ErrInvalidArgument.WithMessage("invalid " + kind + " name: value is empty")
	}
	return nil
}

func requireNames(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := requireName(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

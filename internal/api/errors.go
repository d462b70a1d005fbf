// internal/api/errors.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind is the closed set of failure categories surfaced to callers
type Kind string

const (
	KindValidation     Kind = "validation"
	KindUnauthorized   Kind = "unauthorized"
	KindNotFound       Kind = "not_found"
	KindServer         Kind = "server"
	KindNetworkTimeout Kind = "network_timeout"
)

// Generic fallback messages used when the server gives none
const (
	msgValidation   = "The request could not be processed"
	msgUnauthorized = "Please sign in to continue"
	msgNotFound     = "The requested item was not found"
	msgServer       = "Something went wrong, please try again"
	msgNetwork      = "Unable to reach the server, please check your connection"
)

// Error is the typed error returned for every failed call
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Endpoint, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a client-side validation error; no call was made
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf extracts the error kind through wrapping. Unknown errors are server errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// MessageOf returns the user-facing message for an error
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackMessage(KindOf(err))
}

// KindFromStatus maps an HTTP status into an error kind
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// fromTransport maps a failure below HTTP (dial, timeout, cancellation, body read)
func fromTransport(endpoint string, err error) *Error {
	message := msgNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		message = "The server took too long to respond"
	}
	return &Error{
		Kind:     KindNetworkTimeout,
		Message:  message,
		Endpoint: endpoint,
		Err:      err,
	}
}

func fallbackMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return msgValidation
	case KindUnauthorized:
		return msgUnauthorized
	case KindNotFound:
		return msgNotFound
	case KindNetworkTimeout:
		return msgNetwork
	default:
		return msgServer
	}
}

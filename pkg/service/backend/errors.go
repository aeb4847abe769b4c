package backend

import (
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags for categorization. Every error returned by Client carries exactly one.
var (
	ErrTagInvalidRequest     = goerr.NewTag("invalid_request")
	ErrTagNotFound           = goerr.NewTag("not_found")
	ErrTagServerError        = goerr.NewTag("server_error")
	ErrTagUnexpectedStatus   = goerr.NewTag("unexpected_status")
	ErrTagNetworkUnavailable = goerr.NewTag("network_unavailable")
	ErrTagClientError        = goerr.NewTag("client_error")
)

// Kind is the failure class of a backend call
type Kind string

const (
	KindNone               Kind = ""
	KindInvalidRequest     Kind = "invalid_request"
	KindNotFound           Kind = "not_found"
	KindServerError        Kind = "server_error"
	KindUnexpectedStatus   Kind = "unexpected_status"
	KindNetworkUnavailable Kind = "network_unavailable"
	KindClientError        Kind = "client_error"
)

// Display messages, shown to users as-is
const (
	msgInvalidRequest = "Invalid request data"
	msgNotFound       = "Resource not found"
	msgServerError    = "Internal server error"
	msgNetwork        = "Network error - please check your connection"
	msgUnexpected     = "An unexpected error occurred"
)

// KindOf returns the failure class of err. Errors that did not come from Client
// are reported as KindClientError; nil is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case goerr.HasTag(err, ErrTagInvalidRequest):
		return KindInvalidRequest
	case goerr.HasTag(err, ErrTagNotFound):
		return KindNotFound
	case goerr.HasTag(err, ErrTagServerError):
		return KindServerError
	case goerr.HasTag(err, ErrTagUnexpectedStatus):
		return KindUnexpectedStatus
	case goerr.HasTag(err, ErrTagNetworkUnavailable):
		return KindNetworkUnavailable
	default:
		return KindClientError
	}
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsNetworkUnavailable reports whether no response was received
func IsNetworkUnavailable(err error) bool {
	return KindOf(err) == KindNetworkUnavailable
}

// StatusOf returns the HTTP status carried by err, or 0 if no response was received
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	if v, ok := goerr.Values(err)["status"].(int); ok {
		return v
	}
	return 0
}

// newStatusError maps a non-2xx response onto the error taxonomy. bodyMessage is
// the "message" member of the response body, if any.
func newStatusError(method, path string, status int, bodyMessage string) error {
	opts := []goerr.Option{
		goerr.V("method", method),
		goerr.V("path", path),
		goerr.V("status", status),
	}

	switch status {
	case http.StatusBadRequest:
		msg := bodyMessage
		if msg == "" {
			msg = msgInvalidRequest
		}
		return goerr.New(msg, append(opts, goerr.T(ErrTagInvalidRequest))...)

	case http.StatusNotFound:
		return goerr.New(msgNotFound, append(opts, goerr.T(ErrTagNotFound))...)

	case http.StatusInternalServerError:
		return goerr.New(msgServerError, append(opts, goerr.T(ErrTagServerError))...)

	default:
		msg := bodyMessage
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d error", status)
		}
		return goerr.New(msg, append(opts, goerr.T(ErrTagUnexpectedStatus))...)
	}
}

// newNetworkError reports that the request was sent but no response arrived.
// The transport error is kept as a value so Error() stays display-ready.
func newNetworkError(method, path string, cause error) error {
	return goerr.New(msgNetwork,
		goerr.T(ErrTagNetworkUnavailable),
		goerr.V("method", method),
		goerr.V("path", path),
		goerr.V("cause", cause.Error()),
	)
}

// newClientError reports a failure on our side of the wire
func newClientError(method, path string, cause error, msg string) error {
	if msg == "" {
		msg = msgUnexpected
	}
	if cause == nil {
		return goerr.New(msg,
			goerr.T(ErrTagClientError),
			goerr.V("method", method),
			goerr.V("path", path),
		)
	}
	return goerr.Wrap(cause, msg,
		goerr.T(ErrTagClientError),
		goerr.V("method", method),
		goerr.V("path", path),
	)
}

package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a remote operation failed.
type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1 // network error, timeout, canceled
	KindStatus                         // non-2xx response
	KindDecode                         // response body did not have the expected shape
	KindNoSession                      // no (or expired) local session
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNoSession:
		return "no_session"
	default:
		return "unknown"
	}
}

var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("malformed response")
	ErrNoSession = errors.New("not logged in")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrNotAdmin    = errors.New("admin role required")
	ErrInvalidDate = errors.New("invalid date")
)

// APIError carries the kind of a failed round trip plus what the server said.
type APIError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == KindStatus && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrNoSession:
		return e.Kind == KindNoSession
	case ErrNotFound:
		return e.Kind == KindStatus && e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Kind == KindStatus && e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Kind == KindStatus && e.Status == http.StatusForbidden
	}
	return false
}

// KindOf reports the kind of err, or 0 when err is nil or not classified.
func KindOf(err error) ErrorKind {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, ErrNoSession) {
		return KindNoSession
	}
	return 0
}

package streamgate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when an object key fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the backend reports that the key does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects credentials or permissions
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfiguration is returned when the gateway is deployed without a usable bucket
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream is returned for any other backend failure (timeout, network, malformed response)
	ErrUpstream = errors.New("upstream error")
	// ErrClientDisconnected signals that the client went away mid-stream
	ErrClientDisconnected = errors.New("client disconnected")
)

// FetchError describes a failed backend operation. It unwraps to both the
// failure kind sentinel and the underlying backend error.
type FetchError struct {
	Op     string
	Bucket string
	Key    string
	Kind   error
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Kind)
	}
	return fmt.Sprintf("%s %s/%s: %v: %v", e.Op, e.Bucket, e.Key, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFetchError creates a FetchError for the given object.
// A nil kind is treated as ErrUpstream.
func NewFetchError(op, bucket, key string, kind, err error) *FetchError {
	if kind == nil {
		kind = ErrUpstream
	}
	return &FetchError{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Kind:   kind,
		Err:    err,
	}
}

// FailureKind returns a stable label for err, used in logs and metrics.
// Unknown errors are reported as "upstream".
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "bad_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrClientDisconnected):
		return "client_disconnected"
	default:
		return "upstream"
	}
}

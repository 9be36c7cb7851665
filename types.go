package streamgate

import (
	"context"
	"io"
)

// ObjectMetadata holds the content headers reported by the backend.
// Empty fields mean the backend did not report a value.
type ObjectMetadata struct {
	ContentType        string
	ContentDisposition string
	AcceptRanges       string
}

// Object is a successfully fetched object. Body is an open, single-pass
// stream; whoever receives the Object owns it and must Close it.
type Object struct {
	Body     io.ReadCloser
	Metadata ObjectMetadata
}

// Fetcher retrieves a single object from the storage backend.
//
// Implementations issue exactly one backend request per call and never retry.
// Failures are reported as errors that match one of ErrNotFound,
// ErrUnauthorized, ErrConfiguration or ErrUpstream via errors.Is.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, key string) (Object, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, bucket, key string) (Object, error)

func (f FetcherFunc) Fetch(ctx context.Context, bucket, key string) (Object, error) {
	return f(ctx, bucket, key)
}

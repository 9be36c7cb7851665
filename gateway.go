package streamgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	errFetchTimeout = errors.New("fetch deadline exceeded")
	errIdleTimeout  = errors.New("chunk read deadline exceeded")
)

// GatewayConfig holds configuration options for Gateway.
type GatewayConfig struct {
	// Bucket is the backend bucket every key is resolved against.
	// An empty bucket makes every Get fail with ErrConfiguration.
	Bucket string
	// FetchTimeout bounds the wait for the backend's response headers (0 disables).
	FetchTimeout time.Duration
	// IdleTimeout bounds each chunk read from the backend stream (0 disables).
	IdleTimeout time.Duration
}

// Gateway resolves object keys against the configured bucket and hands the
// fetched stream to the caller. It holds no mutable state and is safe for
// concurrent use.
type Gateway struct {
	fetcher      Fetcher
	bucket       string
	fetchTimeout time.Duration
	idleTimeout  time.Duration
}

func NewGateway(fetcher Fetcher, cfg GatewayConfig) (*Gateway, error) {
	if fetcher == nil {
		return nil, errors.New("new gateway: fetcher is nil")
	}
	if cfg.FetchTimeout < 0 || cfg.IdleTimeout < 0 {
		return nil, errors.New("new gateway: timeouts must not be negative")
	}
	return &Gateway{
		fetcher:      fetcher,
		bucket:       cfg.Bucket,
		fetchTimeout: cfg.FetchTimeout,
		idleTimeout:  cfg.IdleTimeout,
	}, nil
}

// Bucket returns the configured bucket name, possibly empty.
func (g *Gateway) Bucket() string {
	return g.bucket
}

// Get fetches the object stored under key. It calls the Fetcher at most once
// and never when the bucket is missing or the key is invalid.
//
// On success the caller owns the returned Object and must Close its Body.
// Closing the body early aborts the backend request.
func (g *Gateway) Get(ctx context.Context, key string) (Object, error) {
	if g.bucket == "" {
		return Object{}, fmt.Errorf("get %q: bucket not configured: %w", key, ErrConfiguration)
	}

	if !IsValidKey(key) {
		return Object{}, fmt.Errorf("get %q: %w", key, ErrInvalidInput)
	}

	parent := ctx
	ctx, cancel := context.WithCancelCause(parent)

	var timer *time.Timer
	if g.fetchTimeout > 0 {
		timer = time.AfterFunc(g.fetchTimeout, func() { cancel(errFetchTimeout) })
	}

	obj, err := g.fetcher.Fetch(ctx, g.bucket, key)
	expired := timer != nil && !timer.Stop()

	if err != nil {
		err = g.translate(parent, ctx, "get", key, err)
		cancel(nil)
		return Object{}, err
	}

	if expired {
		_ = obj.Body.Close()
		cancel(nil)
		return Object{}, NewFetchError("get", g.bucket, key, ErrUpstream, errFetchTimeout)
	}

	obj.Body = newStreamBody(parent, ctx, cancel, obj.Body, g, key)
	return obj, nil
}

// translate attributes a backend error to a deadline or a departed client
// when the fetch context explains it better than the backend error does.
func (g *Gateway) translate(parent, ctx context.Context, op, key string, err error) error {
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, errFetchTimeout), errors.Is(cause, errIdleTimeout):
		return NewFetchError(op, g.bucket, key, ErrUpstream, cause)
	case parent.Err() != nil:
		return fmt.Errorf("%s %q: %w: %w", op, key, ErrClientDisconnected, parent.Err())
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return NewFetchError(op, g.bucket, key, ErrUpstream, err)
}

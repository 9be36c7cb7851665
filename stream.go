package streamgate

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// streamBody ties a backend stream to the context of the fetch that produced
// it. Close cancels that context, so an undrained backend connection is
// released instead of being read to the end.
type streamBody struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelCauseFunc
	body   io.ReadCloser
	g      *Gateway
	key    string

	timer     *time.Timer
	closeOnce sync.Once
	closeErr  error
}

func newStreamBody(parent, ctx context.Context, cancel context.CancelCauseFunc, body io.ReadCloser, g *Gateway, key string) *streamBody {
	return &streamBody{
		parent: parent,
		ctx:    ctx,
		cancel: cancel,
		body:   body,
		g:      g,
		key:    key,
	}
}

func (b *streamBody) Read(p []byte) (int, error) {
	if b.g.idleTimeout > 0 {
		if b.timer == nil {
			b.timer = time.AfterFunc(b.g.idleTimeout, func() { b.abort(errIdleTimeout) })
		} else {
			b.timer.Reset(b.g.idleTimeout)
		}
	}

	n, err := b.body.Read(p)

	if b.timer != nil {
		b.timer.Stop()
	}

	if err == nil || (errors.Is(err, io.EOF) && b.ctx.Err() == nil) {
		return n, err
	}
	return n, b.g.translate(b.parent, b.ctx, "read", b.key, err)
}

// Close releases the backend stream. It is safe to call more than once and
// concurrently with Read.
func (b *streamBody) Close() error {
	b.abort(context.Canceled)
	return b.closeErr
}

func (b *streamBody) abort(cause error) {
	b.closeOnce.Do(func() {
		b.cancel(cause)
		b.closeErr = b.body.Close()
	})
}

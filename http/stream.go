package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/streamgate"
)

// stream sends the object headers and relays the body in bounded chunks.
// The body is always closed before stream returns.
//
// The first chunk is read before the status line is written, so a backend
// that fails straight away still gets a status code. Once the status line is
// out, an upstream failure aborts the connection so the client sees a
// truncated response instead of a clean end of body.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, log *slog.Logger, obj streamgate.Object) {
	defer func() { _ = obj.Body.Close() }()

	bufp := h.buffers.Get().(*[]byte)
	defer h.buffers.Put(bufp)
	buf := *bufp

	n, err := readChunk(r, obj.Body, buf)
	if n == 0 && err != nil && !errors.Is(err, io.EOF) {
		h.fail(w, log, fmt.Errorf("read first chunk: %w", err))
		return
	}

	h.observer.StreamOpened()

	written, err := h.relay(w, r, obj, buf, n, err)

	outcome := "complete"
	if err != nil {
		outcome = streamgate.FailureKind(err)
	}
	h.observer.StreamClosed(written, outcome)

	switch {
	case err == nil:
		log.Debug("object streamed", "bytes", written)
	case errors.Is(err, streamgate.ErrClientDisconnected):
		log.Info("client disconnected mid-stream", "kind", outcome, "bytes", written, "error", err)
	default:
		log.Error("stream aborted", "kind", outcome, "bytes", written, "error", err)
		panic(http.ErrAbortHandler)
	}
}

// relay writes the headers and the already read first chunk, then copies the
// rest of the body.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, obj streamgate.Object, buf []byte, n int, rerr error) (int64, error) {
	header := w.Header()
	setHeader(header, "Content-Type", obj.Metadata.ContentType)
	setHeader(header, "Content-Disposition", obj.Metadata.ContentDisposition)
	setHeader(header, "Accept-Ranges", obj.Metadata.AcceptRanges)
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)

	var written int64
	for {
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write chunk: %w: %w", streamgate.ErrClientDisconnected, werr)
			}
			written += int64(n)

			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return written, fmt.Errorf("flush chunk: %w: %w", streamgate.ErrClientDisconnected, ferr)
			}
		}

		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}

		n, rerr = readChunk(r, obj.Body, buf)
	}
}

// readChunk reads once from body. A read that fails because the client went
// away is reported as a disconnect rather than an upstream failure.
func readChunk(r *http.Request, body io.Reader, buf []byte) (int, error) {
	n, err := body.Read(buf)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if ctxErr := r.Context().Err(); ctxErr != nil && !errors.Is(err, streamgate.ErrClientDisconnected) {
		return n, fmt.Errorf("read chunk: %w: %w", streamgate.ErrClientDisconnected, ctxErr)
	}
	return n, err
}

// setHeader sets key only when the backend reported a value. A missing
// Content-Type is pinned to nil so net/http does not sniff one.
func setHeader(header http.Header, key, value string) {
	if value != "" {
		header.Set(key, value)
		return
	}
	if key == "Content-Type" {
		header[key] = nil
	}
}

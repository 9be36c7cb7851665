package http_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	streamgatehttp "github.com/sagarc03/streamgate/http"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = streamgatehttp.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	rec := httptest.NewRecorder()

	streamgatehttp.RequestID(handler).ServeHTTP(rec, req)

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(streamgatehttp.RequestIDHeader))
}

func TestRequestID_ReusesClientValue(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = streamgatehttp.RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	req.Header.Set(streamgatehttp.RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()

	streamgatehttp.RequestID(handler).ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", rec.Header().Get(streamgatehttp.RequestIDHeader))
}

func TestRequestID_ReplacesOversizedValue(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	req.Header.Set(streamgatehttp.RequestIDHeader, strings.Repeat("x", 500))
	rec := httptest.NewRecorder()

	streamgatehttp.RequestID(handler).ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Header().Get(streamgatehttp.RequestIDHeader))
	assert.NoError(t, err)
}

func TestAccessLog_RecordsStatusAndBytes(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	})

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	rec := httptest.NewRecorder()

	streamgatehttp.RequestID(streamgatehttp.AccessLog(logger)(handler)).ServeHTTP(rec, req)

	out := logs.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "bytes=5")
	assert.Contains(t, out, "path=/a.txt")
	assert.Contains(t, out, "request_id="+rec.Header().Get(streamgatehttp.RequestIDHeader))
}

func TestAccessLog_LogsAbortedRequests(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("par"))
		panic(http.ErrAbortHandler)
	})

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	rec := httptest.NewRecorder()

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		streamgatehttp.AccessLog(logger)(handler).ServeHTTP(rec, req)
	})
	assert.Contains(t, logs.String(), "bytes=3")
}

package e2e_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeObject is an object served by fakeS3.
type fakeObject struct {
	Body               []byte
	ContentType        string
	ContentDisposition string
}

// fakeS3 is a minimal path-style S3 endpoint serving GetObject for one bucket.
// Keys under "forbidden/" are denied, "broken.bin" fails mid-body and
// "endless.bin" streams until the caller goes away.
type fakeS3 struct {
	*httptest.Server
	bucket  string
	objects map[string]fakeObject

	mu       sync.Mutex
	requests map[string]int
	gone     chan string
}

func newFakeS3(t *testing.T, bucket string, objects map[string]fakeObject) *fakeS3 {
	t.Helper()

	f := &fakeS3{
		bucket:   bucket,
		objects:  objects,
		requests: make(map[string]int),
		gone:     make(chan string, 16),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeS3) serve(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	f.mu.Lock()
	f.requests[key]++
	f.mu.Unlock()

	if r.Method != http.MethodGet {
		writeS3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed", key)
		return
	}
	if bucket != f.bucket {
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket", key)
		return
	}

	switch {
	case strings.HasPrefix(key, "forbidden/"):
		writeS3Error(w, http.StatusForbidden, "AccessDenied", key)
		return

	case key == "broken.bin":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(1<<20))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(make([]byte, 4096))
		http.NewResponseController(w).Flush()
		panic(http.ErrAbortHandler)

	case key == "endless.bin":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		chunk := make([]byte, 32*1024)
		rc := http.NewResponseController(w)
		for {
			if _, err := w.Write(chunk); err != nil {
				f.gone <- key
				return
			}
			_ = rc.Flush()
			select {
			case <-r.Context().Done():
				f.gone <- key
				return
			default:
			}
		}
	}

	obj, ok := f.objects[key]
	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchKey", key)
		return
	}

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	} else {
		w.Header()["Content-Type"] = nil
	}
	if obj.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", obj.ContentDisposition)
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Body)))
	w.Header().Set("ETag", `"fake-etag"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Body)
}

// requestCount returns how many requests reached the backend for key.
func (f *fakeS3) requestCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

func (f *fakeS3) totalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.requests {
		total += n
	}
	return total
}

func writeS3Error(w http.ResponseWriter, status int, code, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>%s</Code><Message>%s</Message><Key>%s</Key><RequestId>fake</RequestId></Error>`,
		code, http.StatusText(status), key)
}

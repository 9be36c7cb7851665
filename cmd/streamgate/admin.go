package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sagarc03/streamgate"
	"github.com/sagarc03/streamgate/metrics"
)

// adminRouter serves operational endpoints on the metrics listener, away
// from the object key space of the gateway router.
func adminRouter(m *metrics.Metrics, gateway *streamgate.Gateway) http.Handler {
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	// Not ready until a bucket is configured, since every request would fail.
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if gateway.Bucket() == "" {
			http.Error(w, "bucket not configured", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ready\n"))
	})

	return r
}

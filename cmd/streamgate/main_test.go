package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/streamgate"
	"github.com/sagarc03/streamgate/config"
	"github.com/sagarc03/streamgate/metrics"
)

func TestParseLevel(t *testing.T) {
	tt := []struct {
		In   string
		Want slog.Level
	}{
		{In: "debug", Want: slog.LevelDebug},
		{In: " INFO ", Want: slog.LevelInfo},
		{In: "warn", Want: slog.LevelWarn},
		{In: "warning", Want: slog.LevelWarn},
		{In: "error", Want: slog.LevelError},
		{In: "", Want: slog.LevelInfo},
	}

	for _, tc := range tt {
		assert.Equal(t, tc.Want, parseLevel(tc.In), "level %q", tc.In)
	}
}

func TestNewFetcher(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	t.Run("s3", func(t *testing.T) {
		fetcher, err := newFetcher(context.Background(), config.BackendConfig{
			Driver:    "s3",
			Region:    "eu-west-1",
			AccessKey: "AKIATEST",
			SecretKey: "secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, fetcher)
	})

	t.Run("minio", func(t *testing.T) {
		fetcher, err := newFetcher(context.Background(), config.BackendConfig{
			Driver:   "minio",
			Endpoint: "localhost:9000",
		})
		require.NoError(t, err)
		assert.NotNil(t, fetcher)
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		_, err := newFetcher(context.Background(), config.BackendConfig{Driver: "minio"})
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := newFetcher(context.Background(), config.BackendConfig{Driver: "gcs"})
		assert.Error(t, err)
	})
}

func newTestGateway(t *testing.T, bucket string) *streamgate.Gateway {
	t.Helper()
	fetcher := streamgate.FetcherFunc(func(context.Context, string, string) (streamgate.Object, error) {
		return streamgate.Object{Body: io.NopCloser(strings.NewReader("x"))}, nil
	})
	gw, err := streamgate.NewGateway(fetcher, streamgate.GatewayConfig{Bucket: bucket})
	require.NoError(t, err)
	return gw
}

func TestAdminRouter(t *testing.T) {
	m := metrics.New()
	m.FetchFailed("not_found")

	router := adminRouter(m, newTestGateway(t, "reports"))

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok\n", rec.Body.String())
	})

	t.Run("readyz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `streamgate_upstream_fetch_failures_total{kind="not_found"} 1`)
	})
}

func TestAdminRouter_NotReadyWithoutBucket(t *testing.T) {
	router := adminRouter(metrics.New(), newTestGateway(t, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSaveObject(t *testing.T) {
	t.Run("writes body", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")

		n, err := saveObject(path, strings.NewReader("%PDF-1.7"))
		require.NoError(t, err)
		assert.Equal(t, int64(8), n)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7", string(data))
	})

	t.Run("removes partial file on read failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")
		body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))

		_, err := saveObject(path, body)
		require.Error(t, err)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "partial file left on disk")
	})
}

func TestKeepIfEmpty(t *testing.T) {
	assert.Equal(t, "loaded-secret", keepIfEmpty("", "loaded-secret"))
	assert.Equal(t, "new-secret", keepIfEmpty("new-secret", "loaded-secret"))
	assert.Empty(t, keepIfEmpty("", ""))
}

package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/streamgate"
)

// DefaultChunkSize is the relay buffer size used when none is configured.
const DefaultChunkSize = 32 * 1024

type Service interface {
	Get(ctx context.Context, key string) (streamgate.Object, error)
}

// Observer receives stream and fetch events, typically to feed metrics.
type Observer interface {
	StreamOpened()
	StreamClosed(written int64, outcome string)
	FetchFailed(kind string)
}

type nopObserver struct{}

func (nopObserver) StreamOpened()              {}
func (nopObserver) StreamClosed(int64, string) {}
func (nopObserver) FetchFailed(string)         {}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// ChunkSize bounds how many bytes are read from the backend per write.
	ChunkSize int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Observer defaults to a no-op.
	Observer Observer
}

// Handler streams objects from the backend to HTTP clients.
type Handler struct {
	config   HandlerConfig
	service  Service
	logger   *slog.Logger
	observer Observer
	buffers  sync.Pool
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:   *config,
		service:  service,
		logger:   config.Logger,
		observer: config.Observer,
	}

	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.observer == nil {
		h.observer = nopObserver{}
	}

	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h.buffers.New = func() any {
		buf := make([]byte, chunkSize)
		return &buf
	}

	return h
}

// Router returns an http.Handler serving GET /{key}. The whole path after
// the leading slash is the object key.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(h.logger))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/*", h.handleGet)

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	log := h.logger.With("request_id", RequestIDFromContext(r.Context()), "key", key)

	if !streamgate.IsValidKey(key) {
		h.fail(w, log, fmt.Errorf("parse key %q: %w", key, streamgate.ErrInvalidInput))
		return
	}

	obj, err := h.service.Get(r.Context(), key)
	if err != nil {
		h.fail(w, log, err)
		return
	}

	h.stream(w, r, log, obj)
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, err error) {
	h.observer.FetchFailed(streamgate.FailureKind(err))
	HandleError(w, log, err)
}

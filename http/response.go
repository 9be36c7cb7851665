package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/streamgate"
)

// WriteError writes a short plain-text error response.
func WriteError(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}

// HandleError maps a fetch failure to a status code and logs it with its
// failure kind. Backend error details are logged, never sent to the client.
func HandleError(w http.ResponseWriter, log *slog.Logger, err error) {
	kind := streamgate.FailureKind(err)

	switch {
	case errors.Is(err, streamgate.ErrInvalidInput):
		log.Debug("rejected object key", "kind", kind, "error", err)
		WriteError(w, http.StatusBadRequest)

	case errors.Is(err, streamgate.ErrNotFound):
		log.Debug("object not found", "kind", kind, "error", err)
		WriteError(w, http.StatusNotFound)

	case errors.Is(err, streamgate.ErrUnauthorized):
		log.Warn("backend denied access", "kind", kind, "error", err)
		WriteError(w, http.StatusForbidden)

	case errors.Is(err, streamgate.ErrConfiguration):
		log.Error("gateway misconfigured", "kind", kind, "error", err)
		WriteError(w, http.StatusInternalServerError)

	case errors.Is(err, streamgate.ErrClientDisconnected):
		// Nobody is left to read a response.
		log.Info("client went away before response", "kind", kind, "error", err)

	default:
		log.Error("backend request failed", "kind", kind, "error", err)
		WriteError(w, http.StatusInternalServerError)
	}
}

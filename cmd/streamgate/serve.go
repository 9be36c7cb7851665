package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/streamgate/config"
	streamgatehttp "github.com/sagarc03/streamgate/http"
	"github.com/sagarc03/streamgate/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the streamgate HTTP gateway on server.port (default 3000).

When metrics are enabled, a second listener on metrics.port (default 9090)
serves /metrics, /healthz and /readyz.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: STREAMGATE_SERVER_PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}

	if gateway.Bucket() == "" {
		slog.Warn("no bucket configured; every request will be answered with 500",
			"hint", "set backend.bucket, STREAMGATE_BACKEND_BUCKET or AWS_S3_BUCKET")
	}

	handlerConfig := streamgatehttp.HandlerConfig{
		CORS:      cfg.CORS,
		ChunkSize: cfg.Server.ChunkSize,
		Logger:    slog.Default(),
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		handlerConfig.Observer = m
	}

	handler := streamgatehttp.NewHandler(&handlerConfig, gateway)

	var root http.Handler = handler.Router()
	if m != nil {
		root = m.Middleware(root)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// No WriteTimeout: it would cut off long object streams.
	servers := []*http.Server{{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}

	if m != nil {
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           adminRouter(m, gateway),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, server := range servers {
		go func() {
			slog.Info("starting server", "addr", server.Addr, "bucket", gateway.Bucket(), "driver", cfg.Backend.Driver)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", server.Addr, err)
				return
			}
			errCh <- nil
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		slog.Info("shutting down server...", "signal", sig.String())
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	if cfg.Server.ShutdownTimeout > 0 {
		shutdownCtx, shutdownCancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	}
	defer shutdownCancel()

	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "addr", server.Addr, "err", err)
		}
	}

	return serveErr
}

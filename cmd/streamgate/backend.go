package main

import (
	"context"
	"fmt"

	"github.com/sagarc03/streamgate"
	"github.com/sagarc03/streamgate/config"
	streamgateminio "github.com/sagarc03/streamgate/minio"
	streamgates3 "github.com/sagarc03/streamgate/s3"
)

// newFetcher builds the backend client selected by cfg.Driver. The client is
// created once and shared by every request.
func newFetcher(ctx context.Context, cfg config.BackendConfig) (streamgate.Fetcher, error) {
	switch cfg.Driver {
	case "minio":
		client, err := streamgateminio.NewClient(streamgateminio.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return streamgateminio.NewFetcher(client), nil

	case "s3", "":
		client, err := streamgates3.NewClient(ctx, streamgates3.Config{
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			UsePathStyle: cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return streamgates3.NewFetcher(client), nil

	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}

func newGateway(ctx context.Context, cfg *config.Config) (*streamgate.Gateway, error) {
	fetcher, err := newFetcher(ctx, cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	gateway, err := streamgate.NewGateway(fetcher, streamgate.GatewayConfig{
		Bucket:       cfg.Backend.Bucket,
		FetchTimeout: cfg.Server.FetchTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	return gateway, nil
}

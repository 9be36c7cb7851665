// Package config provides configuration loading and validation for streamgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (STREAMGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with STREAMGATE_ prefix:
//   - server.port → STREAMGATE_SERVER_PORT
//   - backend.driver → STREAMGATE_BACKEND_DRIVER
//   - log.format → STREAMGATE_LOG_FORMAT
//
// The bucket name is additionally read from AWS_S3_BUCKET, so a deployment
// that only exports the conventional AWS variables works unchanged.
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port (default 3000), chunk_size, fetch/idle/shutdown timeouts
//   - Backend: driver (s3/minio), bucket, region, endpoint and credentials
//   - CORS: cross-origin resource sharing settings (all origins by default)
//   - Metrics: admin listener for /metrics and /healthz
//   - Log: level and format
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Chunk size must be between 1 KiB and 16 MiB
//   - Driver must be s3 or minio; minio requires an endpoint
//   - Log level must be debug, info, warn, or error
//
// A missing bucket is not a load error unless backend.require_bucket is set;
// otherwise every request is answered with 500 until one is configured.
package config

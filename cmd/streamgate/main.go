package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/streamgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "streamgate",
	Short:   "Read-only HTTP gateway that streams objects from S3",
	Long: `Streamgate serves GET /{key} by streaming the object stored under key
in a single S3 (or S3-compatible) bucket to the client.

The bucket is read from backend.bucket, STREAMGATE_BACKEND_BUCKET or
AWS_S3_BUCKET. Credentials and region follow the standard AWS chain.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("bucket", "", "backend bucket (env: STREAMGATE_BACKEND_BUCKET, AWS_S3_BUCKET)")
	rootCmd.PersistentFlags().String("driver", "", "backend driver: s3, minio (default: s3)")
	rootCmd.PersistentFlags().String("endpoint", "", "custom S3 endpoint (env: STREAMGATE_BACKEND_ENDPOINT)")
	rootCmd.PersistentFlags().String("region", "", "backend region (env: STREAMGATE_BACKEND_REGION, AWS_REGION)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

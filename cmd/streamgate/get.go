package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/streamgate"
	"github.com/sagarc03/streamgate/config"
)

var (
	getOutput string
	getStdout bool
)

var getCmd = &cobra.Command{
	Use:   "get <key> [local-path]",
	Short: "Fetch one object through the gateway pipeline",
	Long: `Fetch one object from the configured bucket using the same backend
client, key validation and timeouts as the HTTP gateway. Useful to check
credentials and bucket configuration without starting a server.

Examples:
  streamgate get reports/q1.pdf
  streamgate get reports/q1.pdf ./q1.pdf
  streamgate get --stdout config.json | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file path")
	getCmd.Flags().BoolVar(&getStdout, "stdout", false, "write to stdout")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	key := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if getOutput != "" {
		localPath = getOutput
	}
	if localPath == "" && !getStdout {
		localPath = filepath.Base(key)
	}

	gateway, err := newGateway(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	obj, err := gateway.Get(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("get %q (%s): %w", key, streamgate.FailureKind(err), err)
	}
	defer func() { _ = obj.Body.Close() }()

	var n int64
	if getStdout {
		n, err = io.Copy(os.Stdout, obj.Body)
		if err != nil {
			return fmt.Errorf("copy object: %w", err)
		}
	} else {
		n, err = saveObject(localPath, obj.Body)
		if err != nil {
			return err
		}
	}

	if !getStdout {
		slog.Info("object saved",
			"key", key,
			"path", localPath,
			"bytes", n,
			"content_type", obj.Metadata.ContentType,
		)
	}

	return nil
}

// saveObject writes body to path. A partially written file is removed.
func saveObject(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}

	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, fmt.Errorf("copy object: %w", err)
	}

	return n, nil
}

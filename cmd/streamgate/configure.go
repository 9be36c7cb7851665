package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/streamgate"
	"github.com/sagarc03/streamgate/config"
)

// probeKey is fetched to check credentials and bucket; a 404 is a pass.
const probeKey = ".streamgate-configure-probe"

var configureOutput string

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write a config file interactively",
	Long: `Write a streamgate config file interactively.

You will be prompted for:
  - Backend driver (s3 or minio)
  - Bucket, region and endpoint
  - Access key and secret key (leave empty to use the AWS credential chain)
  - Server port

Values already loaded from an existing config file, the environment or
flags are offered as defaults. The backend is probed before saving.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVarP(&configureOutput, "output", "o", "config.yaml", "config file to write")

	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	loaded, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	cfg := *loaded

	if _, statErr := os.Stat(configureOutput); statErr == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", configureOutput),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	driverPrompt := promptui.Select{
		Label:     "Backend driver",
		Items:     []string{"s3", "minio"},
		CursorPos: driverIndex(cfg.Backend.Driver),
	}
	_, cfg.Backend.Driver, err = driverPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	if cfg.Backend.Bucket, err = promptString("Bucket", cfg.Backend.Bucket, required("bucket")); err != nil {
		return handlePromptError(err)
	}

	if cfg.Backend.Region, err = promptString("Region (empty for AWS default)", cfg.Backend.Region, nil); err != nil {
		return handlePromptError(err)
	}

	var endpointCheck promptui.ValidateFunc
	if cfg.Backend.Driver == "minio" {
		endpointCheck = required("endpoint")
	}
	if cfg.Backend.Endpoint, err = promptString("Endpoint (empty for AWS)", cfg.Backend.Endpoint, endpointCheck); err != nil {
		return handlePromptError(err)
	}

	if cfg.Backend.AccessKey, err = promptString("Access Key (empty for credential chain)", cfg.Backend.AccessKey, nil); err != nil {
		return handlePromptError(err)
	}

	secretLabel := "Secret Key"
	if cfg.Backend.SecretKey != "" {
		secretLabel = "Secret Key (empty keeps current)"
	}
	secretPrompt := promptui.Prompt{
		Label: secretLabel,
		Mask:  '*',
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Backend.SecretKey = keepIfEmpty(secret, cfg.Backend.SecretKey)

	portStr, err := promptString("Server port", strconv.Itoa(cfg.Server.Port), func(input string) error {
		port, convErr := strconv.Atoi(input)
		if convErr != nil || port < 1 || port > 65535 {
			return errors.New("port must be a number between 1 and 65535")
		}
		return nil
	})
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	fmt.Print("Probing backend... ")
	if probeErr := probeBackend(cmd.Context(), &cfg); probeErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", probeErr)

		continuePrompt := promptui.Prompt{
			Label:     "Save config anyway",
			IsConfirm: true,
		}
		if _, promptErr := continuePrompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		fmt.Println("OK")
	}

	if err := config.Save(configureOutput, &cfg); err != nil {
		return err
	}

	fmt.Printf("Config written to %s.\n", configureOutput)
	return nil
}

// probeBackend fetches a key that should not exist. Not found means the
// bucket and credentials work; anything else is reported.
func probeBackend(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}

	obj, err := gateway.Get(ctx, probeKey)
	switch {
	case err == nil:
		_ = obj.Body.Close()
		return nil
	case errors.Is(err, streamgate.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("backend check failed (%s): %w", streamgate.FailureKind(err), err)
	}
}

func promptString(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	return prompt.Run()
}

// keepIfEmpty returns current when the user entered nothing.
func keepIfEmpty(input, current string) string {
	if input == "" {
		return current
	}
	return input
}

func required(name string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func driverIndex(driver string) int {
	if driver == "minio" {
		return 1
	}
	return 0
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}

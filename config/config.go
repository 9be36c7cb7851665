package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	streamgatehttp "github.com/sagarc03/streamgate/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for streamgate.
type Config struct {
	Server  ServerConfig              `mapstructure:"server" yaml:"server"`
	Backend BackendConfig             `mapstructure:"backend" yaml:"backend"`
	CORS    streamgatehttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Metrics MetricsConfig             `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig                 `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	ChunkSize       int           `mapstructure:"chunk_size" yaml:"chunk_size" validate:"min=1024,max=16777216"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}

// BackendConfig holds object storage configuration.
type BackendConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=s3 minio"`
	Bucket        string `mapstructure:"bucket" yaml:"bucket"`
	RequireBucket bool   `mapstructure:"require_bucket" yaml:"require_bucket"`
	Region        string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint      string `mapstructure:"endpoint" yaml:"endpoint,omitempty" validate:"required_if=Driver minio"`
	AccessKey     string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey     string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	UsePathStyle  bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
	UseSSL        bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// MetricsConfig holds the admin listener configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"required_if=Enabled true,min=0,max=65535"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// ErrBucketRequired is returned by Load when backend.require_bucket is set
// and no bucket is configured.
var ErrBucketRequired = errors.New("backend bucket is required")

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":      "server.port",
	"bucket":    "backend.bucket",
	"driver":    "backend.driver",
	"endpoint":  "backend.endpoint",
	"region":    "backend.region",
	"log-level": "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.chunk_size", streamgatehttp.DefaultChunkSize)
	v.SetDefault("server.fetch_timeout", 0)
	v.SetDefault("server.idle_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("backend.driver", "s3")
	v.SetDefault("backend.bucket", "")
	v.SetDefault("backend.require_bucket", false)
	v.SetDefault("backend.region", "")
	v.SetDefault("backend.endpoint", "")
	v.SetDefault("backend.access_key", "")
	v.SetDefault("backend.secret_key", "")
	v.SetDefault("backend.use_path_style", false)
	v.SetDefault("backend.use_ssl", true)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Disposition", "Accept-Ranges", streamgatehttp.RequestIDHeader})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//
// The bucket is also read from AWS_S3_BUCKET when STREAMGATE_BACKEND_BUCKET
// is not set.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("STREAMGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("backend.bucket", "STREAMGATE_BACKEND_BUCKET", "AWS_S3_BUCKET")

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Backend.RequireBucket && strings.TrimSpace(cfg.Backend.Bucket) == "" {
		return nil, fmt.Errorf("validate config: %w", ErrBucketRequired)
	}

	return &cfg, nil
}

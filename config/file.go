package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes durations in their string form ("5s") so the file
// stays readable and loads back through viper unchanged.
func (s ServerConfig) MarshalYAML() (any, error) {
	return struct {
		Port            int    `yaml:"port"`
		ChunkSize       int    `yaml:"chunk_size"`
		FetchTimeout    string `yaml:"fetch_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	}{
		Port:            s.Port,
		ChunkSize:       s.ChunkSize,
		FetchTimeout:    s.FetchTimeout.String(),
		IdleTimeout:     s.IdleTimeout.String(),
		ShutdownTimeout: s.ShutdownTimeout.String(),
	}, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
// The file is readable only by its owner since it may hold credentials.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Package config loads the optional nextbuilder.yml that tunes the build
// adapter. Every field has a default; an absent file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"nextbuilder/shared"
)

const configFile = "nextbuilder.yml"

var clog = shared.PackageLogger("config", "⚙️ CONFIG")

// Config tunes the build pipeline.
type Config struct {
	// MaxLambdaSize is the size budget per deployable unit, in bytes.
	// Informational to the packaging step.
	MaxLambdaSize int64 `yaml:"maxLambdaSize"`

	// Runtime is the platform runtime tag stamped on every deployable unit.
	Runtime string `yaml:"runtime"`

	Dev DevConfig `yaml:"dev"`
}

// DevConfig controls the interactive dev-server proxy.
type DevConfig struct {
	// BasePort is the first port probed when starting a dev server.
	BasePort int `yaml:"basePort"`
	// PortAttempts bounds how many consecutive ports are probed.
	PortAttempts int `yaml:"portAttempts"`
}

// Default returns the configuration used when no nextbuilder.yml exists.
func Default() *Config {
	return &Config{
		MaxLambdaSize: 5 * 1024 * 1024,
		Runtime:       "nodejs8.10",
		Dev: DevConfig{
			BasePort:     5000,
			PortAttempts: 100,
		},
	}
}

// Load reads nextbuilder.yml from dir, applying defaults for anything the
// file leaves unset.
func Load(dir string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configFile, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}

	if cfg.MaxLambdaSize <= 0 {
		cfg.MaxLambdaSize = Default().MaxLambdaSize
	}
	if cfg.Runtime == "" {
		cfg.Runtime = Default().Runtime
	}
	if cfg.Dev.BasePort <= 0 {
		cfg.Dev.BasePort = Default().Dev.BasePort
	}
	if cfg.Dev.PortAttempts <= 0 {
		cfg.Dev.PortAttempts = Default().Dev.PortAttempts
	}

	clog.Debug("loaded %s (maxLambdaSize=%d runtime=%s)", configFile, cfg.MaxLambdaSize, cfg.Runtime)
	return cfg, nil
}

package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// Home is the state directory, e.g. $HOME/.palaver.
	Home string `yaml:"home"`

	// MaxSkippedKeys bounds the per-peer skipped-message-key cache.
	// 0 selects the ratchet default (1000).
	MaxSkippedKeys int `yaml:"max_skipped_keys"`

	// OneTimeBatch is how many one-time prekeys each published bundle
	// carries. 0 selects the default.
	OneTimeBatch int `yaml:"one_time_batch"`

	// ProofWindow is the challenge-proof freshness window as a
	// duration string, e.g. "5m". Empty selects the default.
	ProofWindow string `yaml:"proof_window"`
}

// LoadConfig reads a YAML config file. A missing file yields the zero
// Config so flags and defaults apply.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// proofWindow parses ProofWindow; empty means "use the default".
func (c Config) proofWindow() (time.Duration, error) {
	if c.ProofWindow == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ProofWindow)
	if err != nil {
		return 0, fmt.Errorf("proof_window: %w", err)
	}
	return d, nil
}

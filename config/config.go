// Package config loads the engine's runtime configuration from a TOML
// file. All knobs are optional; zero values fall back to defaults sized
// for the local machine.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

// maxBucketBits bounds the repartition fan-out to a sane bucket count.
const maxBucketBits = 24

// Config carries the engine knobs.
type Config struct {
	// Workers bounds the data-parallel executor. Defaults to the CPU
	// count.
	Workers int `toml:"workers"`
	// BucketBits is the hash repartition fan-out; buckets = 2^BucketBits.
	// Defaults to 4.
	BucketBits int `toml:"bucket_bits"`
	// PoolCapacity is a capacity hint for pooled grouping maps. Defaults
	// to 128. It is parsed and validated only: no component reads it, and
	// grouping maps are always allocated with a fixed capacity of 128.
	PoolCapacity int `toml:"pool_capacity"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		BucketBits:   4,
		PoolCapacity: 128,
	}
}

// Load reads a TOML config file and fills unset knobs with defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes TOML bytes into a validated configuration.
func Parse(raw []byte) (Config, error) {
	cfg := Config{}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	def := Default()
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BucketBits == 0 {
		cfg.BucketBits = def.BucketBits
	}
	if cfg.PoolCapacity == 0 {
		cfg.PoolCapacity = def.PoolCapacity
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range knobs.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.BucketBits < 1 || c.BucketBits > maxBucketBits {
		return fmt.Errorf("bucket_bits must be between 1 and %d, got %d", maxBucketBits, c.BucketBits)
	}
	if c.PoolCapacity < 0 {
		return fmt.Errorf("pool_capacity cannot be negative, got %d", c.PoolCapacity)
	}
	return nil
}

// Package config holds the explicit runtime configuration for the
// extraction tools. A Config is always passed by value into the
// components that need it; nothing reads configuration ambiently.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/pyramid"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full configuration surface of the extraction pipeline.
type Config struct {
	// ArchiveRoot is the archive directory; empty means auto-detect.
	ArchiveRoot string `yaml:"archive_root"`
	// OutputDir receives one pyramid directory per asset.
	OutputDir string `yaml:"output_dir"`
	// TileSize is the tile edge length in pixels.
	TileSize uint32 `yaml:"tile_size"`
	// TileFormat is "png", "jpg" or "jpeg".
	TileFormat string `yaml:"tile_format"`
	// JPEGQuality in [1,100]; 0 means the codec default.
	JPEGQuality int `yaml:"jpeg_quality"`
	// Workers bounds pipeline and tile-encode parallelism; 0 means
	// GOMAXPROCS.
	Workers int `yaml:"workers"`
	// DefaultTier is used when an asset key names no tier.
	DefaultTier string `yaml:"default_tier"`
	// MaxPixels caps decoded source image area; 0 means unlimited.
	MaxPixels uint64 `yaml:"max_pixels"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		OutputDir:   "tiles",
		TileSize:    256,
		TileFormat:  "png",
		DefaultTier: archive.TierHigh.String(),
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %q: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field consistency.
func (c Config) Validate() error {
	if c.TileSize == 0 {
		return fmt.Errorf("%w: tile_size must be positive", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}
	if _, err := pyramid.CodecByName(c.TileFormat, c.JPEGQuality); err != nil {
		return fmt.Errorf("%w: tile_format %q", ErrInvalidConfig, c.TileFormat)
	}
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg_quality %d outside [0,100]", ErrInvalidConfig, c.JPEGQuality)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := archive.ParseTier(c.DefaultTier); err != nil {
		return fmt.Errorf("%w: default_tier %q", ErrInvalidConfig, c.DefaultTier)
	}
	return nil
}

// Codec resolves the configured tile codec.
func (c Config) Codec() (pyramid.Codec, error) {
	return pyramid.CodecByName(c.TileFormat, c.JPEGQuality)
}

// Tier resolves the configured default detail tier.
func (c Config) Tier() (archive.Tier, error) {
	return archive.ParseTier(c.DefaultTier)
}

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// duration wraps time.Duration so TOML values like "30s" parse naturally.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config holds settings loaded from a TOML config file. Flags given on the
// command line take precedence over config values.
type Config struct {
	Input  InputConfig  `toml:"input"`
	Run    RunConfig    `toml:"run"`
	Output OutputConfig `toml:"output"`
}

// InputConfig controls how GeoJSON features are read.
type InputConfig struct {
	IDProperty        string `toml:"id_property"`        // feature property holding the zone ID
	AttributeProperty string `toml:"attribute_property"` // feature property holding the weighting attribute
}

// RunConfig controls the correspondence computation.
type RunConfig struct {
	Mode           string   `toml:"mode"`            // "area" or "attribute"
	AbsoluteSliver float64  `toml:"absolute_sliver"` // minimum fragment area kept
	RelativeSliver float64  `toml:"relative_sliver"` // minimum fragment share of its source zone
	Workers        int      `toml:"workers"`         // parallel zone workers
	ZoneTimeout    duration `toml:"zone_timeout"`    // per-zone overlay deadline
}

// OutputConfig controls what gets written after a run.
type OutputConfig struct {
	Table       string `toml:"table"`       // weight table path (.csv or .json)
	Diagnostics string `toml:"diagnostics"` // skipped-zone report path (JSON)
}

// loadConfig reads a TOML config file from path. A missing file is an error;
// an empty path returns a zero Config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

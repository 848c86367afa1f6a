package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonelink.toml")
	content := `
[input]
id_property = "zone_id"
attribute_property = "population"

[run]
mode = "attribute"
relative_sliver = 0.001
workers = 4
zone_timeout = "30s"

[output]
table = "out.csv"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input.IDProperty != "zone_id" {
		t.Errorf("id_property = %q", cfg.Input.IDProperty)
	}
	if cfg.Input.AttributeProperty != "population" {
		t.Errorf("attribute_property = %q", cfg.Input.AttributeProperty)
	}
	if cfg.Run.Mode != "attribute" {
		t.Errorf("mode = %q", cfg.Run.Mode)
	}
	if cfg.Run.RelativeSliver != 0.001 {
		t.Errorf("relative_sliver = %v", cfg.Run.RelativeSliver)
	}
	if cfg.Run.Workers != 4 {
		t.Errorf("workers = %d", cfg.Run.Workers)
	}
	if cfg.Run.ZoneTimeout.Duration != 30*time.Second {
		t.Errorf("zone_timeout = %v", cfg.Run.ZoneTimeout.Duration)
	}
	if cfg.Output.Table != "out.csv" {
		t.Errorf("table = %q", cfg.Output.Table)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMergeConfigFlagPrecedence(t *testing.T) {
	cfg := Config{
		Run:    RunConfig{Mode: "attribute", Workers: 8},
		Output: OutputConfig{Table: "from_config.csv"},
	}

	cmd := newBuildCmd()
	if err := cmd.ParseFlags([]string{"--mode", "area"}); err != nil {
		t.Fatal(err)
	}

	opts := buildOpts{mode: "area"}
	mergeConfig(&opts, cfg, cmd)

	if opts.mode != "area" {
		t.Errorf("mode = %q, explicit flag should win over config", opts.mode)
	}
	if opts.workers != 8 {
		t.Errorf("workers = %d, unset flag should take config value", opts.workers)
	}
	if opts.output != "from_config.csv" {
		t.Errorf("output = %q, unset flag should take config value", opts.output)
	}
}

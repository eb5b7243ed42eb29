package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig should not return nil")
	}
	if cfg.Flavor != FlavorStandard {
		t.Errorf("expected default flavor %q, got %q", FlavorStandard, cfg.Flavor)
	}
	if cfg.Strict {
		t.Error("expected strict to default to false")
	}
	if !cfg.Analysis.Recursive {
		t.Error("expected analysis.recursive to default to true")
	}
	if cfg.Output.Directory != "." {
		t.Errorf("expected default output directory \".\", got %q", cfg.Output.Directory)
	}
	if len(cfg.Output.Emit) != 2 {
		t.Errorf("expected two default emit artifacts, got %v", cfg.Output.Emit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate cleanly: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid standard", func(c *Config) {}, false},
		{"invalid flavor", func(c *Config) { c.Flavor = "exotic" }, true},
		{"invalid emit artifact", func(c *Config) { c.Output.Emit = []string{"xml"} }, true},
		{"empty output dir", func(c *Config) { c.Output.Directory = "" }, true},
		{"minimal flavor ok", func(c *Config) { c.Flavor = FlavorMinimal }, false},
		{"full flavor ok", func(c *Config) { c.Flavor = FlavorFull }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigDiscoversUpward(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg", "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := "flavor: full\nstrict: true\n"
	if err := os.WriteFile(filepath.Join(dir, "plank.config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("", sub)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Flavor != FlavorFull {
		t.Errorf("expected discovered config's flavor full, got %q", cfg.Flavor)
	}
	if !cfg.Strict {
		t.Error("expected discovered config's strict=true")
	}
}

func TestLoadConfigNoFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig("", dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Flavor != FlavorStandard {
		t.Errorf("expected default flavor when no config file is found, got %q", cfg.Flavor)
	}
}

func TestLoadConfigRejectsInvalidFlavor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plank.config.yaml")
	if err := os.WriteFile(path, []byte("flavor: nonsense\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path, dir); err == nil {
		t.Error("expected an error loading a config with an invalid flavor")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plank.config.yaml")

	original := DefaultConfig()
	original.Flavor = FlavorMinimal
	original.Analysis.ExcludePatterns = []string{"**/vendor/**"}

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path, dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Flavor != FlavorMinimal {
		t.Errorf("expected round-tripped flavor minimal, got %q", loaded.Flavor)
	}
}

func TestGetFlavorPresets(t *testing.T) {
	presets := GetFlavorPresets()
	for _, f := range []Flavor{FlavorMinimal, FlavorStandard, FlavorFull} {
		preset, ok := presets[f]
		if !ok {
			t.Errorf("missing preset for flavor %q", f)
			continue
		}
		if len(preset.Features) == 0 {
			t.Errorf("flavor %q preset has no features", f)
		}
	}
	// The standard flavor must include every feature of the minimal one.
	minimalSet := toSet(presets[FlavorMinimal].Features)
	for _, f := range presets[FlavorStandard].Features {
		_ = f
	}
	standardSet := toSet(presets[FlavorStandard].Features)
	for f := range minimalSet {
		if !standardSet[f] {
			t.Errorf("standard flavor should be a superset of minimal, missing %q", f)
		}
	}
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

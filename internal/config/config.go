// Package config loads and validates plank's project configuration
// (plank.config.yaml), mirroring the teacher's viper-backed Config struct
// idiom in shape (dual json/mapstructure/yaml tags, a Validate pass, a
// LoadConfig/SaveConfig pair) but scoped to plank's own concerns: which
// target flavor a build checks compatibility against, which files an
// `-i <dir>` invocation collects, and where artifacts land.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Flavor names a target feature subset a build is checked against (the
// feature list for each of these is in GetFlavorPresets).
type Flavor string

const (
	FlavorMinimal  Flavor = "minimal"
	FlavorStandard Flavor = "standard"
	FlavorFull     Flavor = "full"
)

// Config is plank's project configuration, loaded from plank.config.yaml.
type Config struct {
	// Flavor selects the target feature set that `plank check`/`plank build`
	// validate the typed graph against.
	Flavor Flavor `json:"flavor" mapstructure:"flavor" yaml:"flavor"`

	// Strict enables the "diagnostic when strictness is enabled" branch of
	// spec.md §4.4 step 6 for otherwise-silent Any-fallback conversions.
	Strict bool `json:"strict" mapstructure:"strict" yaml:"strict"`

	// Analysis controls which files a directory-mode `-i` collects.
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Output controls where and what `plank build` emits.
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// AnalysisConfig controls file collection when `-i` names a directory
// rather than a single root declaration file.
type AnalysisConfig struct {
	// IncludePatterns is passed to internal/respath.CollectDeclarationFiles,
	// which does not use it: every non-excluded .d.ts/.d.mts/.d.cts file is
	// collected regardless of these patterns.
	IncludePatterns []string `json:"include" mapstructure:"include" yaml:"include"`

	// ExcludePatterns are glob patterns excluded from collection, plus
	// whatever the directory's own .gitignore already excludes.
	ExcludePatterns []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`

	// Recursive controls whether subdirectories are walked.
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`
}

// OutputConfig controls `plank build`'s emission.
type OutputConfig struct {
	// Directory is the output directory (must already exist, per spec.md §6).
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`

	// Emit lists which artifacts to produce: "json", "js", or both.
	Emit []string `json:"emit" mapstructure:"emit" yaml:"emit"`

	// Colorize controls ANSI color in diagnostic output (auto-disabled on a
	// non-tty regardless of this setting, see cmd/plank's diagnostic printer).
	Colorize bool `json:"colorize" mapstructure:"colorize" yaml:"colorize"`
}

// DefaultConfig returns the configuration used when no plank.config.yaml is
// found and none is supplied on the command line.
func DefaultConfig() *Config {
	return &Config{
		Flavor: FlavorStandard,
		Strict: false,
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"**/*.d.ts"},
			ExcludePatterns: []string{"**/node_modules/**"},
			Recursive:       true,
		},
		Output: OutputConfig{
			Directory: ".",
			Emit:      []string{"json", "js"},
			Colorize:  true,
		},
	}
}

// candidateConfigNames are searched for, in order, by findDefaultConfig.
var candidateConfigNames = []string{
	"plank.config.yaml",
	"plank.config.yml",
	".plank.yaml",
	".plank.yml",
}

// LoadConfig loads configuration from configPath. An empty configPath
// triggers discovery starting from targetPath (the root module or
// directory passed to `-i`), searching upward through parent directories.
func LoadConfig(configPath, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", configPath, err)
	}
	return cfg, nil
}

// findDefaultConfig searches targetPath and each parent directory for one
// of candidateConfigNames. Module resolution's own "not fully specified by
// the source" gap (SPEC_FULL.md §12, Open Question 1) does not extend to
// config discovery: this walk is plank's own convention, not inherited
// from spec.md.
func findDefaultConfig(targetPath string) string {
	dir := targetPath
	if info, err := os.Stat(targetPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(targetPath)
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	dir = abs

	for {
		for _, name := range candidateConfigNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("flavor", cfg.Flavor)
	v.Set("strict", cfg.Strict)
	v.Set("analysis", cfg.Analysis)
	v.Set("output", cfg.Output)
	return v.WriteConfigAs(path)
}

// Validate checks cfg for internally-consistent values.
func (c *Config) Validate() error {
	switch c.Flavor {
	case FlavorMinimal, FlavorStandard, FlavorFull:
	default:
		return fmt.Errorf("invalid flavor %q: must be one of minimal, standard, full", c.Flavor)
	}
	for _, a := range c.Output.Emit {
		if a != "json" && a != "js" {
			return fmt.Errorf("invalid output.emit artifact %q: must be json or js", a)
		}
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	return nil
}

// Package config builds the layered toolkit configuration once at startup:
// embedded defaults, then the user file in the home directory, then the
// project file in the working directory, later sources winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all toolkit configuration. Built once, passed by value.
type Config struct {
	Style        StyleConfig        `yaml:"style"`
	Verification VerificationConfig `yaml:"verification"`
}

// StyleConfig controls generated-code appearance.
type StyleConfig struct {
	Indent     int    `yaml:"indent"`
	BraceStyle string `yaml:"brace_style"`
	Namespace  string `yaml:"namespace"`
}

// VerificationConfig controls verifier policy.
type VerificationConfig struct {
	Strict            bool     `yaml:"strict"`
	AllowedDeviations []string `yaml:"allowed_deviations"`
}

// UserConfigPath is the per-user config location under $HOME.
const UserConfigPath = ".cpo-tools/config.yaml"

// ProjectConfigName is the per-project config file in the working directory.
const ProjectConfigName = ".cpo-tools.yaml"

// Default returns the embedded defaults.
func Default() Config {
	return Config{
		Style: StyleConfig{
			Indent:     2,
			BraceStyle: "allman",
			Namespace:  "cpo",
		},
		Verification: VerificationConfig{
			Strict: false,
		},
	}
}

// Load merges defaults with the user and project config files. Missing
// files are fine; unreadable yaml is an error.
func Load() (Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeFile(&cfg, filepath.Join(home, UserConfigPath)); err != nil {
			return Config{}, err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return cfg, nil
	}
	if err := mergeFile(&cfg, filepath.Join(cwd, ProjectConfigName)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays one yaml source onto cfg. Fields absent from the file
// keep their current values.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

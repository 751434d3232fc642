// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/helper/gc"
)

const (
	// EnvConfigFile names the environment variable consulted for the config
	// file path when none is given.
	EnvConfigFile = "CT_CHECKER_CONFIG_FILE"

	// EnvRoots names the environment variable holding extra trusted
	// certificate paths, separated by the OS path-list separator.
	EnvRoots = "CT_CHECKER_ROOTS"
)

// Output formats understood by the CLI.
const (
	FormatText  = "text"
	FormatTree  = "tree"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Formats lists every accepted output format.
var Formats = []string{FormatText, FormatTree, FormatTable, FormatJSON}

// ErrInvalidFormat indicates an output format outside [Formats].
var ErrInvalidFormat = errors.New("config: invalid output format")

// format represents supported configuration file formats.
type format int

const (
	// formatJSON represents JSON configuration format (.json)
	formatJSON format = iota
	// formatYAML represents YAML configuration format (.yaml, .yml)
	formatYAML
)

// Config holds checker settings.
//
// Relative paths in Roots and Intermediates are resolved against the
// directory of the file they were read from.
type Config struct {
	// Roots: Files holding one trusted certificate each
	Roots []string `json:"roots" yaml:"roots"`
	// Intermediates: Files appended to the chain before checking
	Intermediates []string `json:"intermediates,omitempty" yaml:"intermediates,omitempty"`
	// Precert: Check the chain as a precertificate chain
	Precert bool `json:"precert" yaml:"precert"`
	// Format: One of text, tree, table or json
	Format string `json:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Format: FormatText}
}

func detectFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func unmarshal(data []byte, cfg *Config, f format) error {
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load reads the configuration at path and applies defaults.
//
// Configuration Priority:
//  1. Default values are set
//  2. [EnvConfigFile] is checked if path is empty
//  3. Config file values override defaults
//  4. Paths in [EnvRoots] are appended to Roots
//
// Returns:
//   - *Config: The loaded configuration
//   - error: A read or parse error
//
// Format is not checked here so callers can override it first; call
// [Config.Validate] once all sources are merged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	if path != "" {
		data, err := gc.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshal(data, cfg, detectFormat(path)); err != nil {
			return nil, err
		}

		dir := filepath.Dir(path)
		cfg.Roots = resolve(dir, cfg.Roots)
		cfg.Intermediates = resolve(dir, cfg.Intermediates)

		if cfg.Format == "" {
			cfg.Format = FormatText
		}
	}

	for _, root := range filepath.SplitList(os.Getenv(EnvRoots)) {
		if root != "" {
			cfg.Roots = append(cfg.Roots, root)
		}
	}

	return cfg, nil
}

// Validate checks that Format is one of [Formats].
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidFormat, c.Format, strings.Join(Formats, ", "))
	}
	return nil
}

func resolve(dir string, paths []string) []string {
	for i, p := range paths {
		if p != "" && !filepath.IsAbs(p) {
			paths[i] = filepath.Join(dir, p)
		}
	}
	return paths
}

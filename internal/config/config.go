// Package config loads templint.toml, discovered by walking up from the
// lint target. Every field is optional; flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file searched for.
const FileName = "templint.toml"

// Config is the decoded templint.toml.
type Config struct {
	Lint LintConfig `toml:"lint"`
}

// LintConfig tunes one lint run.
type LintConfig struct {
	// MaxCSVSizeKB overrides the CSV size limit, in kibibytes.
	MaxCSVSizeKB int64 `toml:"max_csv_size_kb"`
	// DisabledCodes lists diagnostic code IDs (e.g. "TPL1012") to drop.
	DisabledCodes []string `toml:"disabled_codes"`
	// WarningsAsErrors promotes warnings to errors for the exit code.
	WarningsAsErrors bool `toml:"warnings_as_errors"`
	// Jobs caps rule-group parallelism.
	Jobs int `toml:"jobs"`
}

// Manifest couples a decoded config with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir looking for templint.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and decodes the nearest templint.toml. A missing file is
// not an error; ok is false and the zero config applies.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func decode(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Lint.MaxCSVSizeKB < 0 {
		return Config{}, fmt.Errorf("%s: [lint].max_csv_size_kb must not be negative", path)
	}
	if cfg.Lint.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [lint].jobs must not be negative", path)
	}
	return cfg, nil
}

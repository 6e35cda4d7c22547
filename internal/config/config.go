// Package config loads the optional .jsonprof.yml settings file and carries
// the tunable analysis bounds (array sampling, preview length, snippet
// context) together with corpus discovery defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jsonprof/jsonprof/internal/index"
	"github.com/jsonprof/jsonprof/internal/report"
	"github.com/jsonprof/jsonprof/internal/walker"
)

// Config represents the complete configuration for jsonprof
type Config struct {
	// Root is the repository root the corpus folders live under.
	Root string `yaml:"root"`
	// Reports is the directory index and report files are written to (and
	// read back from by the table/unique/compare commands).
	Reports string `yaml:"reports"`
	// Folders are the corpora processed when none are named on the command
	// line.
	Folders []string `yaml:"folders"`
	// IgnorePatterns are filename patterns excluded from schema analysis.
	IgnorePatterns []string `yaml:"ignore_patterns"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Dev      DevConfig      `yaml:"dev"`
}

// AnalysisConfig holds the analysis bounds. The defaults are inherited from
// the original reports this tool replays, not load-bearing invariants.
type AnalysisConfig struct {
	// ArraySample caps how many leading array elements the walker visits.
	ArraySample int `yaml:"array_sample"`
	// PreviewLength caps the per-file content preview in folder indexes.
	PreviewLength int `yaml:"preview_length"`
	// SnippetContext is the context window around unique-path snippets.
	SnippetContext int `yaml:"snippet_context"`
	// Workers bounds the per-file analysis pool; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Root:    ".",
		Reports: "reports",
		Folders: []string{"full", "no_few_shot_no_constraints", "single_agent"},
		IgnorePatterns: []string{
			"*_full_response.json",
			"*full_response*.json",
			"*metadata*.json",
			"modeler.json",
			"parser.json",
			"*parser*.json",
			"*modeler_metadata*.json",
		},
		Analysis: AnalysisConfig{
			ArraySample:    walker.DefaultArraySample,
			PreviewLength:  index.DefaultPreviewLen,
			SnippetContext: report.DefaultSnippetContext,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonprof.yml", ".jsonprof.yaml", "jsonprof.yml", "jsonprof.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// normalize repairs zero or negative bounds back to the defaults so a sparse
// config file can override only what it names.
func (c *Config) normalize() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.Reports == "" {
		c.Reports = "reports"
	}
	if c.Analysis.ArraySample == 0 {
		c.Analysis.ArraySample = walker.DefaultArraySample
	}
	if c.Analysis.PreviewLength <= 0 {
		c.Analysis.PreviewLength = index.DefaultPreviewLen
	}
	if c.Analysis.SnippetContext <= 0 {
		c.Analysis.SnippetContext = report.DefaultSnippetContext
	}
	if c.Analysis.Workers < 0 {
		c.Analysis.Workers = 0
	}
}

// Package config loads bookspin configuration from YAML with environment
// overrides for secrets and paths.
package config

import (
	"fmt"
	"os"

	"bookspin/internal/ai"
	"bookspin/internal/logging"
	"bookspin/internal/scraper"
	"bookspin/internal/workflow"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	DataDir  string          `yaml:"data_dir"`
	DBPath   string          `yaml:"db_path"`
	Workflow WorkflowConfig  `yaml:"workflow"`
	AI       ai.Config       `yaml:"ai"`
	Scraper  scraper.Config  `yaml:"scraper"`
	Logging  logging.Options `yaml:"logging"`
}

// WorkflowConfig bounds the revision loops.
type WorkflowConfig struct {
	MaxAIIterations       int `yaml:"max_ai_iterations"`
	MaxHumanSubIterations int `yaml:"max_human_sub_iterations"`
}

// Options converts the section into workflow options.
func (w WorkflowConfig) Options() workflow.Options {
	return workflow.Options{
		MaxAIIterations:       w.MaxAIIterations,
		MaxHumanSubIterations: w.MaxHumanSubIterations,
	}
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	defaults := workflow.DefaultOptions()
	return &Config{
		DataDir: "data",
		DBPath:  "data/versions.db",
		Workflow: WorkflowConfig{
			MaxAIIterations:       defaults.MaxAIIterations,
			MaxHumanSubIterations: defaults.MaxHumanSubIterations,
		},
		AI:      ai.DefaultConfig(),
		Scraper: scraper.DefaultConfig(),
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables override file values:
// BOOKSPIN_API_KEY (or GEMINI_API_KEY) and BOOKSPIN_DB_PATH.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("BOOKSPIN_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = key
	}
	if dbPath := os.Getenv("BOOKSPIN_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Workflow.MaxAIIterations < 0 {
		return fmt.Errorf("max_ai_iterations must not be negative")
	}
	if c.Workflow.MaxHumanSubIterations < 0 {
		return fmt.Errorf("max_human_sub_iterations must not be negative")
	}
	return nil
}

// Package config loads adtrace settings from an optional YAML file, .env
// files and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/logger"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full adtrace configuration.
type Config struct {
	// CorpusPath is the combined corpus file read and rewritten by preprocess.
	CorpusPath string `yaml:"corpus_path" env:"ADTRACE_CORPUS"`
	// CrawlDir holds one <engine>.json crawl file per engine.
	CrawlDir string `yaml:"crawl_dir" env:"ADTRACE_CRAWL_DIR"`
	// TrackerLists are Adblock-format rule files (EasyList, EasyPrivacy).
	TrackerLists []string `yaml:"tracker_lists" env:"ADTRACE_TRACKER_LISTS"`
	// DictionaryPath is a newline separated English word list.
	DictionaryPath string `yaml:"dictionary_path" env:"ADTRACE_DICTIONARY"`
	// Workers bounds the number of occurrences processed concurrently.
	Workers int `yaml:"workers" env:"ADTRACE_WORKERS"`

	Logging logger.Config `yaml:"logging"`
	UID     UID           `yaml:"uid"`

	// Engines overrides the built-in engine table when non-empty.
	Engines []engine.Engine `yaml:"engines"`
}

// UID configures the identifier classifier.
type UID struct {
	TimestampWindow Window `yaml:"timestamp_window"`
}

// Window is an inclusive range of Unix timestamps in seconds.
type Window struct {
	From int64 `yaml:"from" env:"ADTRACE_WINDOW_FROM"`
	To   int64 `yaml:"to" env:"ADTRACE_WINDOW_TO"`
}

// Default returns the settings of the 2022 measurement campaign.
func Default() Config {
	return Config{
		CorpusPath:     "../Data/all_se_results.json",
		CrawlDir:       "../Crawling_system/files",
		TrackerLists:   []string{"lists/easylist.txt", "lists/easyprivacy.txt"},
		DictionaryPath: "/usr/share/dict/words",
		Workers:        4,
		Logging:        logger.Config{Level: "info"},
		UID: UID{TimestampWindow: Window{
			From: 1654034400, // 2022-06-01
			To:   1672527600, // 2023-01-01
		}},
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads ENV_FILE if set, else .env.local then .env. Missing
// files are fine; existing variables are never overwritten.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1 (got %d)", ErrInvalid, c.Workers)
	}
	if w := c.UID.TimestampWindow; w.From > w.To {
		return fmt.Errorf("%w: timestamp window from %d is after to %d", ErrInvalid, w.From, w.To)
	}
	if len(c.Engines) > 0 {
		if _, err := engine.NewTable(c.Engines); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// EngineTable returns the configured engine table.
func (c *Config) EngineTable() (*engine.Table, error) {
	if len(c.Engines) == 0 {
		return engine.Default(), nil
	}
	return engine.NewTable(c.Engines)
}
